package cms

import (
	"net/http"

	cmshttp "github.com/goliatone/go-cms-community/internal/http"
	"github.com/goliatone/go-cms-community/internal/logging"
)

// HTTPHandler returns the REST API mounted at Server.BasePath. Requests are
// untrusted: access rules are always evaluated against the Basic-auth user.
func (m *Module) HTTPHandler() (http.Handler, error) {
	c := m.container
	opts := []cmshttp.Option{
		cmshttp.WithBasePath(m.cfg.Server.BasePath),
		cmshttp.WithCollectionService(c.CollectionService()),
		cmshttp.WithGlobalService(c.GlobalService()),
		cmshttp.WithPopulator(c.Populator),
		cmshttp.WithDepth(m.cfg.Depth.Default, m.cfg.Depth.Max),
		cmshttp.WithLogger(logging.HTTPLogger(c.LoggerProvider())),
	}
	if users := c.UserService(); users != nil {
		opts = append(opts, cmshttp.WithUserService(users))
	}
	return cmshttp.NewAPI(m.Schema(), opts...).Handler()
}
