package config

// BotConfig is the persistent per-instrument trading unit record. One bot
// owns exactly one instrument; the record is loaded fresh at the start of
// every run, mutated in memory, and written back wholesale.
type BotConfig struct {
	Name         string `json:"name"`
	ConfigPath   string `json:"path_to_config"`
	OrderLogPath string `json:"path_order_dump"`

	Model ModelParams     `json:"parameters_model"`
	Tech  TechnicalLimits `json:"limitations_technical"`
	Cash  CashLimits      `json:"limitations_cash"`
}

// ModelParams describes the forecasting model artifact and the last
// known-good hyperparameters the nightly search ranges around.
type ModelParams struct {
	ArtifactPath string `json:"path_model"`
	ModelName    string `json:"name_model"`
	Figi         string `json:"figi"`
	Interval     string `json:"interval_time"`

	TrainingDays int `json:"training_days"`
	LagOrder     int `json:"lag_order"`

	MeanRelativeError float64 `json:"mean_relative_error"`
	MeanAbsoluteError float64 `json:"mean_absolute_error"`

	// Spread fractions bounding how far the nightly search may drift
	// from the last known-good values.
	SpreadDays   float64 `json:"spread_days"`
	SpreadLag    float64 `json:"spread_lag"`
	SpreadWindow float64 `json:"spread_window"`
}

// TechnicalLimits holds the parameters the trading run feeds the model with.
type TechnicalLimits struct {
	AccuracyMargin float64 `json:"accuracy_margin"`
	InputWindow    int     `json:"input_window"`
	Horizon        int     `json:"horizon"`
}

// CashLimits holds the order sizing constraints and the live ledger.
// Cash and Lots are mutated only by the order lifecycle on a terminal fill.
type CashLimits struct {
	LotSize           int64   `json:"lot_size"`
	Quantity          int64   `json:"quantity"`
	MinPriceIncrement float64 `json:"min_price_increment"`
	MinCash           float64 `json:"min_cash"`
	MinLots           int64   `json:"min_lots"`
	Cash              float64 `json:"cash"`
	Lots              int64   `json:"lots"`
}
