package render

import (
	"sort"

	"github.com/genslides/genslides/pptx"
)

// FieldRule describes how an outline field maps onto a layout's placeholder
// inventory. Roles are tried in order; the first role with any candidates
// wins, and candidates are ranked by placeholder index. Ordinal selects
// among them, and FallbackToFirst downgrades a missing ordinal to the first
// candidate instead of failing.
type FieldRule struct {
	Roles           []pptx.Role
	Ordinal         int
	FallbackToFirst bool
}

// defaultFieldRules covers every field the built-in layout schemas emit.
// Chrome placeholders (date, footer, slide number) never appear in any
// preference list and so are never written to.
var defaultFieldRules = map[string]FieldRule{
	"title":               {Roles: []pptx.Role{pptx.RoleTitle, pptx.RoleCenterTitle, pptx.RoleBody}},
	"subtitle":            {Roles: []pptx.Role{pptx.RoleSubtitle, pptx.RoleBody}},
	"section_title":       {Roles: []pptx.Role{pptx.RoleTitle, pptx.RoleCenterTitle, pptx.RoleBody}},
	"section_description": {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}},
	"content":             {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}},
	"caption_text":        {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}},
	"left_content":        {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}, Ordinal: 0, FallbackToFirst: true},
	"right_content":       {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}, Ordinal: 1, FallbackToFirst: true},

	"left_comparison_content":  {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}, Ordinal: 0, FallbackToFirst: true},
	"right_comparison_content": {Roles: []pptx.Role{pptx.RoleBody, pptx.RoleObject}, Ordinal: 1, FallbackToFirst: true},
	"object_description":  {Roles: []pptx.Role{pptx.RoleObject, pptx.RolePicture, pptx.RoleBody}},
	"picture_description": {Roles: []pptx.Role{pptx.RolePicture, pptx.RoleObject, pptx.RoleBody}},
}

// resolvePlaceholder finds the placeholder index an outline field should be
// written to, or reports failure when the layout has no suitable slot.
func resolvePlaceholder(layout *pptx.Layout, field string, rules map[string]FieldRule) (int, bool) {
	rule, ok := rules[field]
	if !ok {
		rule, ok = defaultFieldRules[field]
		if !ok {
			return 0, false
		}
	}
	for _, role := range rule.Roles {
		candidates := placeholdersByRole(layout, role)
		if len(candidates) == 0 {
			continue
		}
		if rule.Ordinal < len(candidates) {
			return candidates[rule.Ordinal], true
		}
		if rule.FallbackToFirst {
			return candidates[0], true
		}
		return 0, false
	}
	return 0, false
}

// placeholdersByRole returns the indices of a layout's placeholders with the
// given role, in ascending index order.
func placeholdersByRole(layout *pptx.Layout, role pptx.Role) []int {
	var idxs []int
	for _, ph := range layout.Placeholders {
		if ph.Role == role {
			idxs = append(idxs, ph.Index)
		}
	}
	sort.Ints(idxs)
	return idxs
}
