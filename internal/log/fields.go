package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOwner       = "owner"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldAsOf        = "as_of"
	FieldPeriod      = "period"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
	FieldAnomalies   = "anomalies"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentEngine  = "engine"
	ComponentService = "service"
	ComponentStorage = "storage"
	ComponentWorker  = "worker"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpExpand    = "expand"
	OpAggregate = "aggregate"
	OpProject   = "project"
	OpReport    = "report"
	OpAlert     = "alert"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
