package hello

// Greeting is the fixed message returned by the root route.
const Greeting = "Hello, World!"

// Data models the response payload.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello, World!"`
}

// GetOutput is the response wrapper for GET /.
type GetOutput struct {
	Body Data
}
