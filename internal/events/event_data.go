package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// BudgetExceededData contains data for BudgetExceeded events
type BudgetExceededData struct {
	Count  int     `json:"count"`
	Ms     float64 `json:"ms"`
	Budget float64 `json:"budget"`
	Worker bool    `json:"worker"`
}

// EventType returns the event type for BudgetExceededData
func (d *BudgetExceededData) EventType() EventType {
	return BudgetExceeded
}

// StrategySelectedData contains data for StrategySelected events
type StrategySelectedData struct {
	RunID    string `json:"run_id"`
	Strategy string `json:"strategy"`
	Count    int    `json:"count"`
}

// EventType returns the event type for StrategySelectedData
func (d *StrategySelectedData) EventType() EventType {
	return StrategySelected
}

// ActionsComputedData contains data for ActionsComputed events
type ActionsComputedData struct {
	RunID   string  `json:"run_id"`
	Count   int     `json:"count"`
	Actions int     `json:"actions"`
	Ms      float64 `json:"ms"`
	Worker  bool    `json:"worker"`
}

// EventType returns the event type for ActionsComputedData
func (d *ActionsComputedData) EventType() EventType {
	return ActionsComputed
}

// RatesSyncedData contains data for RatesSynced events
type RatesSyncedData struct {
	Month      string `json:"month"`
	Currencies int    `json:"currencies"`
}

// EventType returns the event type for RatesSyncedData
func (d *RatesSyncedData) EventType() EventType {
	return RatesSynced
}

// PrefsCleanedData contains data for PrefsCleaned events
type PrefsCleanedData struct {
	Removed int64 `json:"removed"`
}

// EventType returns the event type for PrefsCleanedData
func (d *PrefsCleanedData) EventType() EventType {
	return PrefsCleaned
}
