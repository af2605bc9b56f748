package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/key"
)

func addItem(c *cache.Cache, k key.Key, children ...key.Key) {
	c.Add(cache.Snapshot{Object: k, Children: children, ChildrenNum: len(children)})
}

func TestSubtreeIncludesRootAndDescendants(t *testing.T) {
	c := cache.New()
	root := key.New(":1.1", "/root")
	a := key.New(":1.1", "/a")
	b := key.New(":1.1", "/b")
	grandchild := key.New(":1.1", "/a/1")

	addItem(c, grandchild)
	addItem(c, a, grandchild)
	addItem(c, b)
	addItem(c, root, a, b)

	items := extract.Subtree(c, root)

	var keys []key.Key
	for _, it := range items {
		keys = append(keys, it.Object)
	}
	assert.ElementsMatch(t, []key.Key{root, a, b, grandchild}, keys)
}

func TestSubtreeSkipsMissingChildren(t *testing.T) {
	c := cache.New()
	root := key.New(":1.1", "/root")
	missing := key.New(":1.1", "/gone")
	addItem(c, root, missing)

	items := extract.Subtree(c, root)
	assert.Len(t, items, 1)
	assert.Equal(t, root, items[0].Object)
}

func TestSubtreeHandlesCircularReferences(t *testing.T) {
	c := cache.New()
	a := key.New(":1.1", "/a")
	b := key.New(":1.1", "/b")
	addItem(c, a, b)
	addItem(c, b, a)

	items := extract.Subtree(c, a)
	assert.Len(t, items, 2)
}

func TestRelationTargetsFindsMatchingKind(t *testing.T) {
	target := key.New(":1.1", "/label")
	rels := atspi.RelationSet{
		{Kind: atspi.RelationLabelFor, Targets: []key.Key{target}},
		{Kind: atspi.RelationControllerFor, Targets: []key.Key{key.New(":1.1", "/other")}},
	}

	got := extract.RelationTargets(rels, atspi.RelationLabelFor)
	assert.Equal(t, []key.Key{target}, got)
}

func TestRelationTargetsReturnsNilWhenAbsent(t *testing.T) {
	rels := atspi.RelationSet{{Kind: atspi.RelationFlowsTo, Targets: []key.Key{key.New(":1.1", "/x")}}}
	assert.Nil(t, extract.RelationTargets(rels, atspi.RelationLabelledBy))
}

func TestActiveApplicationRejectsUntilFirstFocus(t *testing.T) {
	tracker := extract.NewFocusTracker()
	predicate := extract.ActiveApplication(tracker)

	h := event.Hydrated{Raw: atspi.Event{Object: key.New(":1.2", "/x")}}
	assert.Error(t, predicate(h))
}

func TestActiveApplicationMatchesFocusedBusName(t *testing.T) {
	tracker := extract.NewFocusTracker()
	tracker.SetActiveApplication(key.New(":1.2", "/root"))
	predicate := extract.ActiveApplication(tracker)

	matching := event.Hydrated{Raw: atspi.Event{Object: key.New(":1.2", "/x")}}
	assert.NoError(t, predicate(matching))

	other := event.Hydrated{Raw: atspi.Event{Object: key.New(":1.3", "/x")}}
	assert.Error(t, predicate(other))
}
