package supervisor

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"golang.org/x/sync/singleflight"
)

const DefaultResolveTimeout = 20 * time.Second

// Resolver locates the inventory service add-on and builds its base url. Every call
// queries the registry again; concurrent calls share the in-flight query.
type Resolver struct {
	// Timeout bounds the shared registry query, which outlives any single caller.
	Timeout     time.Duration
	registry    Registry
	serviceName string
	selfSlug    string
	port        int
	group       singleflight.Group
}

func NewResolver(registry Registry, serviceName, selfSlug string, port int) *Resolver {
	if serviceName == "" {
		serviceName = model.DefaultServiceName
	}
	if selfSlug == "" {
		selfSlug = model.DefaultSelfSlug
	}
	if port <= 0 {
		port = model.DefaultGrocyPort
	}
	return &Resolver{
		Timeout:     DefaultResolveTimeout,
		registry:    registry,
		serviceName: serviceName,
		selfSlug:    selfSlug,
		port:        port,
	}
}

// Resolve returns http://{ip}:{port} for the inventory service add-on. A caller whose
// ctx ends returns early without failing the other callers sharing the query.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	ch := r.group.DoChan("resolve", func() (any, error) {
		timeout := r.Timeout
		if timeout <= 0 {
			timeout = DefaultResolveTimeout
		}
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return r.resolve(shared)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *Resolver) resolve(ctx context.Context) (string, error) {
	log := pfxlog.Logger().WithField("service", r.serviceName)

	addons, err := r.registry.ListAddons(ctx)
	if err != nil {
		return "", err
	}

	slug, err := FindService(addons, r.serviceName, r.selfSlug)
	if err != nil {
		return "", err
	}
	log = log.WithField("slug", slug)

	info, err := r.registry.AddonInfo(ctx, slug)
	if err != nil {
		return "", err
	}
	ip := strings.TrimSpace(info.IPAddress)
	if ip == "" {
		return "", fmt.Errorf("%w: addon [%s]", model.ErrAddressUnresolved, slug)
	}

	baseURL := BaseURL(ip, r.port)
	log.WithField("url", baseURL).Debug("resolved inventory service")
	return baseURL, nil
}

// FindService returns the slug of the first add-on whose slug contains serviceName and
// is not selfSlug. Repository add-ons carry a "<hash>_" prefix, so selfSlug also matches
// as a suffix.
func FindService(addons []Addon, serviceName, selfSlug string) (string, error) {
	var matches []string
	for _, addon := range addons {
		if strings.Contains(addon.Slug, serviceName) && !isSelf(addon.Slug, selfSlug) {
			matches = append(matches, addon.Slug)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no addon slug contains '%s'", model.ErrServiceNotFound, serviceName)
	}
	if len(matches) > 1 {
		pfxlog.Logger().Warnf("multiple addons match '%s' %v, using [%s]", serviceName, matches, matches[0])
	}
	return matches[0], nil
}

func isSelf(slug, selfSlug string) bool {
	return slug == selfSlug || strings.HasSuffix(slug, "_"+selfSlug)
}

// BaseURL composes the inventory service base url from a private address.
func BaseURL(ip string, port int) string {
	return "http://" + net.JoinHostPort(ip, strconv.Itoa(port))
}
