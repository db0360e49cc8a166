package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

const (
	configMapScheme = "cm://"

	// ConfigMapKey is the ConfigMap data key holding the document.
	ConfigMapKey = "config.json"
)

// Loader reads the cluster configuration from a file or a ConfigMap and
// caches the parsed result for a short time.
type Loader struct {
	location string
	cache    *Cache
	ttl      time.Duration
	kube     kubernetes.Interface
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithKubeClient sets the client used for cm:// locations. Without it the
// client is built from the ambient kubeconfig on first use.
func WithKubeClient(c kubernetes.Interface) LoaderOption {
	return func(l *Loader) {
		l.kube = c
	}
}

// WithTTL overrides how long a parsed configuration is reused.
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// NewLoader returns a loader for location, a file path or cm://ns/name. An
// empty location uses the default config file.
func NewLoader(location string, cache *Cache, opts ...LoaderOption) *Loader {
	if location == "" {
		location = defaults.ConfigFile()
	}
	if cache == nil {
		cache = NewCache()
	}
	l := &Loader{location: location, cache: cache, ttl: defaults.ConfigCacheTTL}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Location returns where the configuration is read from.
func (l *Loader) Location() string {
	return l.location
}

// Load returns the configuration, reading it again once the cached copy has
// expired.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	v, err := l.cache.GetOrSet(NamespaceConfig, l.location, l.ttl, func() (any, error) {
		return l.read(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

// Invalidate drops the cached configuration.
func (l *Loader) Invalidate() {
	l.cache.Clear(NamespaceConfig)
}

func (l *Loader) read(ctx context.Context) (*Config, error) {
	if ref, ok := strings.CutPrefix(l.location, configMapScheme); ok {
		return l.readConfigMap(ctx, ref)
	}

	data, err := os.ReadFile(l.location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig, "config file:%s not found. Please run setup command first.", l.location)
	}
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "Error loading config file:"+l.location, err)
	}

	slog.Debug("loaded cluster config", "path", l.location)
	return Parse(data, FormatFromPath(l.location))
}

func (l *Loader) readConfigMap(ctx context.Context, ref string) (*Config, error) {
	ns, name, ok := strings.Cut(ref, "/")
	if !ok || ns == "" || name == "" {
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig, "invalid ConfigMap reference %q, expected cm://namespace/name", l.location)
	}

	if l.kube == nil {
		client, err := BuildKubeClient("")
		if err != nil {
			return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to create kubernetes client", err)
		}
		l.kube = client
	}

	cm, err := l.kube.CoreV1().ConfigMaps(ns).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig, "ConfigMap %s/%s not found", ns, name)
	}
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, fmt.Sprintf("failed to read ConfigMap %s/%s", ns, name), err)
	}

	data, ok := cm.Data[ConfigMapKey]
	if !ok {
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig, "ConfigMap %s/%s has no %q key", ns, name, ConfigMapKey)
	}

	slog.Debug("loaded cluster config", "configmap", ns+"/"+name)
	return Parse([]byte(data), FormatJSON)
}
