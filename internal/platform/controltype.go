package platform

import "strconv"

// UI Automation control type identifiers start at UIA_ButtonControlTypeId.
const firstControlTypeID = 50000

var controlTypeNames = [...]string{
	"ButtonControl",
	"CalendarControl",
	"CheckBoxControl",
	"ComboBoxControl",
	"EditControl",
	"HyperlinkControl",
	"ImageControl",
	"ListItemControl",
	"ListControl",
	"MenuControl",
	"MenuBarControl",
	"MenuItemControl",
	"ProgressBarControl",
	"RadioButtonControl",
	"ScrollBarControl",
	"SliderControl",
	"SpinnerControl",
	"StatusBarControl",
	"TabControl",
	"TabItemControl",
	"TextControl",
	"ToolBarControl",
	"ToolTipControl",
	"TreeControl",
	"TreeItemControl",
	"CustomControl",
	"GroupControl",
	"ThumbControl",
	"DataGridControl",
	"DataItemControl",
	"DocumentControl",
	"SplitButtonControl",
	"WindowControl",
	"PaneControl",
	"HeaderControl",
	"HeaderItemControl",
	"TableControl",
	"TitleBarControl",
	"SeparatorControl",
	"SemanticZoomControl",
	"AppBarControl",
}

// ControlTypeName maps a UI Automation control type id to its display name.
// Unknown ids render as "ControlType(<id>)".
func ControlTypeName(id int) string {
	if idx := id - firstControlTypeID; idx >= 0 && idx < len(controlTypeNames) {
		return controlTypeNames[idx]
	}
	return "ControlType(" + strconv.Itoa(id) + ")"
}
