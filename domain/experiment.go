package domain

import "time"

// Experiment statuses form a strict state machine:
// draft -> running -> {paused, completed}, paused -> {running, completed},
// completed is terminal.
const (
	ExperimentDraft     = "draft"
	ExperimentRunning   = "running"
	ExperimentPaused    = "paused"
	ExperimentCompleted = "completed"
)

// Experiment variants.
const (
	VariantControl = "control"
	VariantVariant = "variant"
)

// Experiment metrics.
const (
	MetricCTR               = "ctr"
	MetricConversionRate    = "conversion_rate"
	MetricRevenuePerVisitor = "revenue_per_visitor"
)

var experimentTransitions = map[string]map[string]bool{
	ExperimentDraft:     {ExperimentRunning: true},
	ExperimentRunning:   {ExperimentPaused: true, ExperimentCompleted: true},
	ExperimentPaused:    {ExperimentRunning: true, ExperimentCompleted: true},
	ExperimentCompleted: {},
}

// CanTransition reports whether status from may move to status to.
func CanTransition(from, to string) bool {
	return experimentTransitions[from][to]
}

type Experiment struct {
	ID              string     `gorm:"column:id;primaryKey" json:"id"`
	TenantID        string     `gorm:"column:tenant_id;not null;index:idx_experiments_tenant" json:"tenant_id"`
	Name            string     `gorm:"column:name;type:text;not null" json:"name"`
	ControlStrategy Strategy   `gorm:"column:control_strategy;not null" json:"control_strategy"`
	VariantStrategy Strategy   `gorm:"column:variant_strategy;not null" json:"variant_strategy"`
	TrafficSplit    int        `gorm:"column:traffic_split;not null" json:"traffic_split"`
	Metric          string     `gorm:"column:metric;not null" json:"metric"`
	PlacementID     string     `gorm:"column:placement_id" json:"placement_id,omitempty"`
	Status          string     `gorm:"column:status;not null;default:draft" json:"status"`
	StartedAt       *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Experiment) TableName() string {
	return "experiments"
}

// ExperimentResult holds the aggregated counters for one variant of an
// experiment. Exactly two rows exist per experiment; the external rollup job
// increments them and this service only reads.
type ExperimentResult struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ExperimentID string  `gorm:"column:experiment_id;not null;uniqueIndex:uq_results_experiment_variant" json:"experiment_id"`
	Variant      string  `gorm:"column:variant;not null;uniqueIndex:uq_results_experiment_variant" json:"variant"`
	Impressions  int64   `gorm:"column:impressions;default:0" json:"impressions"`
	Clicks       int64   `gorm:"column:clicks;default:0" json:"clicks"`
	Conversions  int64   `gorm:"column:conversions;default:0" json:"conversions"`
	Revenue      float64 `gorm:"column:revenue;type:numeric;default:0" json:"revenue"`
	SampleSize   int64   `gorm:"column:sample_size;default:0" json:"sample_size"`
}

func (ExperimentResult) TableName() string {
	return "experiment_results"
}
