// Package hello serves the fixed greeting at the root path.
package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/hello-server/internal/platform/logging"
)

// Register wires GET / and its HEAD twin into api. HEAD runs the same
// handler; net/http drops the body on the wire.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Return the greeting",
	}, getHandler)

	huma.Register(api, huma.Operation{
		OperationID: "head-greeting",
		Method:      http.MethodHead,
		Path:        "/",
		Summary:     "Return the greeting headers",
		Hidden:      true,
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogInfo(ctx, "Got a request")
	return &GetOutput{Body: Data{Message: Greeting}}, nil
}
