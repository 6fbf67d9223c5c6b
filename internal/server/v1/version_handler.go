package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-version"

	"github.com/calder-labs/provider-hub/pkg/api"
)

// AppVersion is stamped at build time via -ldflags.
var AppVersion = "v0.0.0"

type VersionHandler struct{}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// Version reports the server version. Clients may pass min_version to
// check compatibility in the same call.
//
// GET /version?min_version=
func (h *VersionHandler) Version(c *gin.Context) {
	resp := gin.H{"version": AppVersion}

	if min := c.Query("min_version"); min != "" {
		current, err := version.NewVersion(AppVersion)
		if err != nil {
			_ = c.Error(api.InternalProblem("Invalid server version", err))
			return
		}
		required, err := version.NewVersion(min)
		if err != nil {
			_ = c.Error(api.BadRequestProblem("Invalid 'min_version' parameter"))
			return
		}
		resp["compatible"] = current.GreaterThanOrEqual(required)
	}

	c.JSON(http.StatusOK, resp)
}
