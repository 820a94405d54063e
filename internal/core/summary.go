package core

import "time"

// SeverityClassifiedRecord is a defective record with its severity bucket.
type SeverityClassifiedRecord struct {
	TransactionRecord
	SeverityLevel Severity `json:"severity_level"`
}

// DefectTypeSummary is one row of the root-cause breakdown.
type DefectTypeSummary struct {
	DefectType               string  `json:"defect_type"`
	IncidentCount            int     `json:"incident_count"`
	AvgAbsVariance           float64 `json:"avg_abs_variance"`
	PercentageOfTotalDefects float64 `json:"percentage_of_total_defects"`
}

// WarehouseSummary is one row of the warehouse ranking.
type WarehouseSummary struct {
	Warehouse         string  `json:"warehouse"`
	TotalTransactions int     `json:"total_transactions"`
	DefectCount       int     `json:"defect_count"`
	DefectRatePct     float64 `json:"defect_rate_pct"`
	AccuracyRatePct   float64 `json:"accuracy_rate_pct"`
}

// OperatorErrorSummary is one row of the manual-entry operator ranking.
type OperatorErrorSummary struct {
	OperatorID            string  `json:"operator_id"`
	EntryMethod           string  `json:"entry_method"`
	TransactionsProcessed int     `json:"transactions_processed"`
	Errors                int     `json:"errors"`
	ErrorRatePct          float64 `json:"error_rate_pct"`
}

// MonthlyTrend is the defect rate of a single YYYY-MM month.
type MonthlyTrend struct {
	Month             string  `json:"month"`
	TotalTransactions int     `json:"total_transactions"`
	Defects           int     `json:"defects"`
	DefectRatePct     float64 `json:"defect_rate_pct"`
}

// IntegrityReport measures how many records carry date, warehouse and operator.
type IntegrityReport struct {
	TotalRecords                  int            `json:"total_records"`
	RecordsWithCompleteCoreFields int            `json:"records_with_complete_core_fields"`
	IntegrityScorePct             float64        `json:"integrity_score_pct"`
	RecordsWithDate               int            `json:"records_with_date"`
	MissingByField                map[string]int `json:"missing_by_field"`
	MeetsCompliance               bool           `json:"meets_compliance"`
}

// OverallSummary is the whole-table defect and accuracy rate.
type OverallSummary struct {
	TotalRecords    int     `json:"total_records"`
	TotalDefects    int     `json:"total_defects"`
	DefectRatePct   float64 `json:"defect_rate_pct"`
	AccuracyRatePct float64 `json:"accuracy_rate_pct"`
}

// EntryMethodSummary compares defect rates per entry method.
type EntryMethodSummary struct {
	EntryMethod       string  `json:"entry_method"`
	TotalTransactions int     `json:"total_transactions"`
	DefectCount       int     `json:"defect_count"`
	DefectRatePct     float64 `json:"defect_rate_pct"`
}

// SeverityBucketSummary counts defects per severity bucket.
type SeverityBucketSummary struct {
	Severity       Severity `json:"severity"`
	IncidentCount  int      `json:"incident_count"`
	AvgAbsVariance float64  `json:"avg_abs_variance"`
}

// TrendChange compares the first and last month of a trend.
type TrendChange struct {
	FirstMonth     string  `json:"first_month"`
	LastMonth      string  `json:"last_month"`
	FirstRatePct   float64 `json:"first_rate_pct"`
	LastRatePct    float64 `json:"last_rate_pct"`
	ImprovementPct float64 `json:"improvement_pct"` // negative means the rate went up
}

// Findings are the headline insights derived from a bundle.
type Findings struct {
	TopRootCause          string       `json:"top_root_cause,omitempty"`
	TopRootCausePct       float64      `json:"top_root_cause_pct"`
	BestWarehouse         string       `json:"best_warehouse,omitempty"`
	BestWarehouseAccuracy float64      `json:"best_warehouse_accuracy_pct"`
	WorstWarehouse        string       `json:"worst_warehouse,omitempty"`
	WorstWarehouseRate    float64      `json:"worst_warehouse_defect_rate_pct"`
	WorstEntryMethod      string       `json:"worst_entry_method,omitempty"`
	BestEntryMethod       string       `json:"best_entry_method,omitempty"`
	Trend                 *TrendChange `json:"trend,omitempty"`
}

// ReportBundle holds every report computed from one dataset snapshot.
type ReportBundle struct {
	GeneratedAt          time.Time                  `json:"generated_at"`
	Fingerprint          string                     `json:"fingerprint"`
	Overall              OverallSummary             `json:"overall"`
	RootCauses           []DefectTypeSummary        `json:"root_causes"`
	Warehouses           []WarehouseSummary         `json:"warehouses"`
	EntryMethods         []EntryMethodSummary       `json:"entry_methods"`
	Operators            []OperatorErrorSummary     `json:"operators"`
	SeverityDistribution []SeverityBucketSummary    `json:"severity_distribution"`
	Severity             []SeverityClassifiedRecord `json:"severity"`
	MonthlyTrend         []MonthlyTrend             `json:"monthly_trend"`
	Integrity            IntegrityReport            `json:"integrity"`
	Findings             Findings                   `json:"findings"`
}
