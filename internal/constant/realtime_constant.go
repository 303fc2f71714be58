package constant

// Realtime envelope types.
const (
	MessageTypeQuestion   = "question"
	MessageTypePing       = "ping"
	MessageTypeSystem     = "system"
	MessageTypeProcessing = "processing"
	MessageTypeAnswer     = "answer"
	MessageTypeError      = "error"
	MessageTypePong       = "pong"
)

const (
	RealtimeMessageConnected     = "Connected to loan review assistant"
	RealtimeMessageProcessing    = "Analyzing your question..."
	RealtimeErrorNoContext       = "Session context not initialized. Please initialize the session first."
	RealtimeErrorInvalidJSON     = "Invalid message format"
	RealtimeErrorEmptyQuestion   = "Question cannot be empty"
	RealtimeErrorUnknownType     = "unknown message type"
	RealtimeErrorProcessingFails = "Failed to process question"
)

// ClusterSessionChannel is the Redis channel used to fan session teardown out to every instance.
const ClusterSessionChannel = "loan_session_events"

// Channel labels for the questions counter.
const (
	ChannelRealtime = "websocket"
	ChannelHTTP     = "http"
)
