package datastore

// ScriptFindingRecord is one row of the findings export: a script URL discovered on a host.
type ScriptFindingRecord struct {
	SessionID     string `parquet:"session_id"`
	Host          string `parquet:"host"`
	Scheme        string `parquet:"scheme"`
	BaseURL       string `parquet:"base_url"`
	ScriptURL     string `parquet:"script_url"`
	ScanTimestamp int64  `parquet:"scan_timestamp"`
}
