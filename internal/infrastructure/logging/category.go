package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Pairing         Category = "Pairing"
	Internal        Category = "Internal"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	RateLimiting    SubCategory = "RateLimiting"
	Authentication  SubCategory = "Authentication"
	ExternalService SubCategory = "ExternalService"

	// Pairing
	RoomLifecycle SubCategory = "RoomLifecycle"
	Expiry        SubCategory = "Expiry"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomCode     ExtraKey = "RoomCode"
	RoomID       ExtraKey = "RoomID"
	Subject      ExtraKey = "Subject"
	ErrorMessage ExtraKey = "ErrorMessage"
)
