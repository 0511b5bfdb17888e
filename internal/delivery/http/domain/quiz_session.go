package domain

var (
	QUIZ_SESSION_CREATE_SUCCESS    = "Session created"
	QUIZ_SESSION_CREATE_FAILED     = "Failed to create session"
	QUIZ_SESSION_GET_SUCCESS       = "Session retrieved"
	QUIZ_SESSION_GET_FAILED        = "Failed to get session"
	QUIZ_SESSION_SETTINGS_SUCCESS  = "Settings updated"
	QUIZ_SESSION_SETTINGS_FAILED   = "Failed to update settings"
	QUIZ_SESSION_RESET_SUCCESS     = "Quiz reset"
	QUIZ_SESSION_RESET_FAILED      = "Failed to reset quiz"
	QUIZ_SCORE_GET_SUCCESS         = "Score retrieved"
	QUIZ_SCORE_GET_FAILED          = "Failed to get score"
	QUIZ_ANSWER_SUBMIT_SUCCESS     = "Answer submitted"
	QUIZ_ANSWER_SUBMIT_FAILED      = "Failed to submit answer"
	QUIZ_CHATBOT_SEND_SUCCESS      = "Message sent"
	QUIZ_CHATBOT_SEND_FAILED       = "Failed to send message"
	QUIZ_CHATBOT_HISTORY_SUCCESS   = "Chat history retrieved"
	QUIZ_CHATBOT_HISTORY_FAILED    = "Failed to get chat history"
	QUIZ_CHATBOT_MALFORMED_ACTION  = "The assistant could not handle that message, please try again"
	QUIZ_EXPLANATION_STREAM_FAILED = "Failed to stream explanation"
	QUIZ_SESSION_ID_REQUIRED       = "session_id is required"
	QUIZ_SESSION_ID_INVALID        = "session_id must be a UUID"
)
