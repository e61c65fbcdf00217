package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common/config"
	relay "github.com/prismstudio/director-core/relay/controller"
	"github.com/prismstudio/director-core/relay/credential"
	relaymodel "github.com/prismstudio/director-core/relay/model"
)

var entitlements = credential.NewEntitlementCache(config.EntitlementCacheTTL)

// ListModels handles GET /api/models. Without a provider query parameter it
// returns the static catalog; with one it resolves a credential the same way
// the director does and serves the entitlement from cache when possible.
func ListModels(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		catalog := make(map[string][]string, len(relaymodel.SupportedProviders))
		for _, p := range relaymodel.SupportedProviders {
			catalog[p] = relay.GetAdaptor(p).GetModelList()
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog})
		return
	}

	a := relay.GetAdaptor(provider)
	if a == nil {
		errResp := relaymodel.NewValidationErrorf("provider", "unsupported provider %s", provider)
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}
	resolved, errResp := credential.Resolve(c.Request.Header, nil, provider, config.Policy)
	if errResp != nil {
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}

	if models, ok := entitlements.GetModels(provider, resolved.Key, ""); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": models, "cached": true})
		return
	}
	models := a.GetModelList()
	entitlements.SetModels(provider, resolved.Key, "", models)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": models, "cached": false})
}
