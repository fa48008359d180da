package types

// Telemetry Constants
const (
	MetricNamespace = "AppointmentScheduler"

	// Metric Names
	MetricAppointmentScheduled  = "AppointmentScheduled"
	MetricNotificationProcessed = "NotificationProcessed"
	MetricMessageProcessed      = "MessageProcessed"
	MetricProcessingLatency     = "ProcessingLatency"
	MetricAPIRequestCount       = "APIRequestCount"
	MetricAPILatency            = "APILatency"

	// Dimensions
	DimCountry  = "Country"
	DimQueue    = "Queue"
	DimResult   = "Result"
	DimMethod   = "Method"
	DimEndpoint = "Endpoint"
	DimStatus   = "Status"
)
