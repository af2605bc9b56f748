package extract

import (
	"context"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/key"
)

// RelationSet fetches k's accessible relations directly from the
// provider (spec.md §6's get_relation_set RPC; original_source's
// relation_set.rs extractor). Relations are not cached, since they
// change independently of the object they're attached to and nothing
// in spec.md's invalidation rules covers them.
func RelationSet(ctx context.Context, provider atspi.Provider, k key.Key) (atspi.RelationSet, error) {
	return provider.Accessible(k).RelationSet(ctx)
}

// RelationTargets filters rels down to the targets of relations of kind,
// mirroring original_source's ConstRelationType specialization (e.g.
// RelationLabelledBy for the subject of a label).
func RelationTargets(rels atspi.RelationSet, kind atspi.RelationKind) []key.Key {
	for _, rel := range rels {
		if rel.Kind == kind {
			return rel.Targets
		}
	}
	return nil
}
