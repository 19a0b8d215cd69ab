// Package present projects a memo session onto render instructions that any
// UI shell can draw: a label list, the detail fields and the preview region.
package present

import (
	"memo-cli/internal/memo"
)

type Label struct {
	ID     string
	Title  string
	Active bool
}

type Field struct {
	Value    string
	ReadOnly bool
}

type View struct {
	Labels []Label

	// MemoID is the active memo's id ("" when there are no memos).
	MemoID string
	Title  Field
	Body   Field

	// Exactly one of BodyVisible/PreviewVisible is true.
	BodyVisible    bool
	PreviewVisible bool
	// PreviewSource is the markdown the preview region should show.
	PreviewSource string

	EditVisible bool
	SaveVisible bool

	Mode   memo.Mode
	Notice string
}

// Project renders snap. notice is an optional blocking message for the user.
func Project(snap memo.Snapshot, notice string) View {
	v := View{
		Labels: make([]Label, 0, len(snap.Memos)),
		Mode:   snap.Mode,
		Notice: notice,
	}
	for i, m := range snap.Memos {
		v.Labels = append(v.Labels, Label{ID: m.ID, Title: m.Title, Active: i == snap.Selected})
	}

	editing := snap.Mode == memo.ModeEditing
	v.BodyVisible = editing
	v.PreviewVisible = !editing
	v.EditVisible = !editing
	v.SaveVisible = editing

	if active, ok := snap.Active(); ok {
		v.MemoID = active.ID
		v.Title = Field{Value: active.Title, ReadOnly: !editing}
		v.Body = Field{Value: active.Body, ReadOnly: !editing}
		v.PreviewSource = active.Body
	} else {
		v.Title.ReadOnly = !editing
		v.Body.ReadOnly = !editing
	}
	return v
}

// ActiveLabel returns the index of the active label, or -1.
func (v View) ActiveLabel() int {
	for i, l := range v.Labels {
		if l.Active {
			return i
		}
	}
	return -1
}
