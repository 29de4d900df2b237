package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mcoot/rpschat/internal/api/apierr"
)

// IntQuery reads an integer query parameter, returning def when it is absent
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.NewInvalidRequestError(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
