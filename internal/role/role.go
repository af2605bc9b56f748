// Package role enumerates the AT-SPI accessible roles and provides a
// compact bitset (RoleSet) used by structural navigation to describe a
// target set of roles to search for.
package role

// Role is one variant of the fixed AT-SPI role enumeration (spec.md §3).
// The full AT-SPI role table has on the order of 130 variants; this lists
// the subset the core's handlers and structural-navigation bindings
// actually reference by name (§6 default keybindings, §4.4 terminating
// roles). Unrecognized wire values decode to RoleUnknown rather than
// failing, since new roles are occasionally added to the AT-SPI registry.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleInvalid
	RoleFrame
	RoleInternalFrame
	RoleDialog
	RoleWindow
	RolePanel
	RolePushButton
	RoleToggleButton
	RoleCheckBox
	RoleRadioButton
	RoleComboBox
	RoleMenu
	RoleMenuItem
	RoleMenuBar
	RoleLabel
	RoleText
	RoleEntry
	RolePasswordText
	RoleParagraph
	RoleHeading
	RoleSection
	RoleLink
	RoleImage
	RoleTable
	RoleTableCell
	RoleTableRow
	RoleTableColumnHeader
	RoleTableRowHeader
	RoleList
	RoleListItem
	RoleTree
	RoleTreeItem
	RoleScrollBar
	RoleSeparator
	RoleStatusBar
	RoleToolBar
	RoleToolTip
	RoleProgressBar
	RoleSlider
	RoleSpinButton
	RoleDocumentFrame
	RoleDocumentWeb
	RoleApplication
	RoleEmbedded
	RoleCanvas
	RoleForm
	roleCount
)

var roleNames = map[Role]string{
	RoleUnknown:           "unknown",
	RoleInvalid:           "invalid",
	RoleFrame:             "frame",
	RoleInternalFrame:     "internal frame",
	RoleDialog:            "dialog",
	RoleWindow:            "window",
	RolePanel:             "panel",
	RolePushButton:        "push button",
	RoleToggleButton:      "toggle button",
	RoleCheckBox:          "check box",
	RoleRadioButton:       "radio button",
	RoleComboBox:          "combo box",
	RoleMenu:              "menu",
	RoleMenuItem:          "menu item",
	RoleMenuBar:           "menu bar",
	RoleLabel:             "label",
	RoleText:              "text",
	RoleEntry:             "entry",
	RolePasswordText:      "password text",
	RoleParagraph:         "paragraph",
	RoleHeading:           "heading",
	RoleSection:           "section",
	RoleLink:              "link",
	RoleImage:             "image",
	RoleTable:             "table",
	RoleTableCell:         "table cell",
	RoleTableRow:          "table row",
	RoleTableColumnHeader: "column header",
	RoleTableRowHeader:    "row header",
	RoleList:              "list",
	RoleListItem:          "list item",
	RoleTree:              "tree",
	RoleTreeItem:          "tree item",
	RoleScrollBar:         "scroll bar",
	RoleSeparator:         "separator",
	RoleStatusBar:         "status bar",
	RoleToolBar:           "tool bar",
	RoleToolTip:           "tool tip",
	RoleProgressBar:       "progress bar",
	RoleSlider:            "slider",
	RoleSpinButton:        "spin button",
	RoleDocumentFrame:     "document frame",
	RoleDocumentWeb:       "document web",
	RoleApplication:       "application",
	RoleEmbedded:          "embedded",
	RoleCanvas:            "canvas",
	RoleForm:              "form",
}

// Name returns the human-readable role name used to phrase speech, e.g.
// "push button" for RolePushButton (spec.md §8 scenario 2).
func (r Role) Name() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

func (r Role) String() string { return r.Name() }

// Set is a bitset over Role, used to describe "any of these roles" when
// matching structural-navigation targets or terminating boundaries.
type Set [2]uint64

// Of builds a Set containing exactly the given roles.
func Of(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

// With returns a Set with r added.
func (s Set) With(r Role) Set {
	word, bit := uint8(r)/64, uint8(r)%64
	s[word] |= 1 << bit
	return s
}

// Without returns a Set with r removed.
func (s Set) Without(r Role) Set {
	word, bit := uint8(r)/64, uint8(r)%64
	s[word] &^= 1 << bit
	return s
}

// Contains reports whether r is a member of s.
func (s Set) Contains(r Role) bool {
	word, bit := uint8(r)/64, uint8(r)%64
	return s[word]&(1<<bit) != 0
}

// Union returns the union of s and other.
func (s Set) Union(other Set) Set {
	return Set{s[0] | other[0], s[1] | other[1]}
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool {
	return s[0] == 0 && s[1] == 0
}
