package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/selection"
	"github.com/tunogya/rankview/pkg/series"
)

// Subject constants
const (
	SubjectActions       = "rankview.actions"
	SubjectChartSnapshot = "rankview.chart.snapshot"
)

// ActionType names a user action on the selection
type ActionType string

const (
	ActionSelectDataset   ActionType = "select_dataset"
	ActionSelectDateRange ActionType = "select_date_range"
	ActionSelectMaxRank   ActionType = "select_max_rank"
)

// ErrInvalidAction marks messages that can never succeed and must not be
// redelivered
var ErrInvalidAction = errors.New("invalid action")

// ActionMsg represents one selection change request. Only the fields of the
// given type are read.
type ActionMsg struct {
	Type      ActionType  `json:"type"`
	DatasetID string      `json:"dataset_id,omitempty"`
	Start     *model.Date `json:"start,omitempty"`
	End       *model.Date `json:"end,omitempty"`
	MaxRank   int         `json:"max_rank,omitempty"`
}

// Validate checks the fields required by the action type
func (m *ActionMsg) Validate() error {
	switch m.Type {
	case ActionSelectDataset:
		if _, err := model.ParseDatasetID(m.DatasetID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	case ActionSelectDateRange:
		if m.Start == nil || m.End == nil {
			return fmt.Errorf("%w: date range needs start and end", ErrInvalidAction)
		}
		if err := m.dateRange().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	case ActionSelectMaxRank:
		if err := model.ValidateMaxRank(m.MaxRank); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, m.Type)
	}
	return nil
}

// Apply validates the action and dispatches it onto the controller
func (m *ActionMsg) Apply(c *selection.Controller) error {
	if err := m.Validate(); err != nil {
		return err
	}

	switch m.Type {
	case ActionSelectDataset:
		id, _ := model.ParseDatasetID(m.DatasetID)
		if err := c.SelectDataset(id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	case ActionSelectDateRange:
		c.SelectDateRange(m.dateRange())
	case ActionSelectMaxRank:
		c.SelectMaxRank(m.MaxRank)
	}
	return nil
}

func (m *ActionMsg) dateRange() model.DateRange {
	var r model.DateRange
	if m.Start != nil {
		r.Start = *m.Start
	}
	if m.End != nil {
		r.End = *m.End
	}
	return r
}

// SnapshotMsg is the chart state published after every applied action
type SnapshotMsg struct {
	Selection model.Selection  `json:"selection"`
	MinMax    model.DateRange  `json:"min_max"`
	Chart     series.Payload   `json:"chart"`
	Summaries []series.Summary `json:"summaries"`
}

// NewSnapshotMsg captures the controller's current selection and chart
func NewSnapshotMsg(c *selection.Controller) *SnapshotMsg {
	view := c.View()
	return &SnapshotMsg{
		Selection: view.Selection,
		MinMax:    view.MinMaxRange,
		Chart:     view.Chart.Payload(),
		Summaries: series.SummarizeChart(view.Chart),
	}
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeAction deserializes an ActionMsg from JSON bytes. Undecodable input
// is reported as ErrInvalidAction.
func DecodeAction(data []byte) (*ActionMsg, error) {
	var msg ActionMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return &msg, nil
}

// DecodeSnapshot deserializes a SnapshotMsg from JSON bytes
func DecodeSnapshot(data []byte) (*SnapshotMsg, error) {
	var msg SnapshotMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
