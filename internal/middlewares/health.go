package middlewares

import (
	"net/http"

	"github.com/smartleave/leave-composer/internal/util"
)

//RuntimeHealthCheck reports service liveness
func RuntimeHealthCheck() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		util.WithBodyAndStatus("All OK", http.StatusOK, w)
	}
}
