// Package pod builds the manifest for a project folder and drives its
// lifecycle through kubectl.
package pod

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kukushkin/kplay/internal/config"
	"github.com/kukushkin/kplay/internal/minikube"
	"github.com/kukushkin/kplay/internal/types"
)

const (
	shmVolumeName = "pod-shm-volume"
	shmMountPath  = "/dev/shm"
)

// Options are the per-invocation settings given on the command line.
type Options struct {
	// Image overrides the configured image when not empty.
	Image string
	// Verbose echoes every kubectl command before running it.
	Verbose bool
	// Force adds --force to pod deletion.
	Force bool
}

// Pod is the pod associated with a folder on the host.
type Pod struct {
	Name       string
	VolumeName string
	PathHost   string
	PathVM     string
	Config     *config.Config
	Options    Options

	translator minikube.Translator
	home       string
}

// New derives the pod for pathHost. The configuration values are expanded
// with the pod's template variables and decoded once.
func New(pathHost string, values config.Values, tr minikube.Translator, opts Options) (*Pod, error) {
	pathVM, err := tr.HostPathInVM(pathHost)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(filepath.Clean(pathHost))

	expanded := config.ExpandTemplates(values, config.TemplateVars(name, pathHost, pathVM))
	cfg, err := expanded.Decode(pathHost)
	if err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	return &Pod{
		Name:       name,
		VolumeName: name + "-volume",
		PathHost:   pathHost,
		PathVM:     pathVM,
		Config:     cfg,
		Options:    opts,
		translator: tr,
		home:       home,
	}, nil
}

// Image returns the image the container runs.
func (p *Pod) Image() string {
	if p.Options.Image != "" {
		return p.Options.Image
	}
	return p.Config.Image
}

// Manifest builds the Pod manifest from scratch. It fails without returning
// a partial manifest if any extra volume cannot be mounted.
func (p *Pod) Manifest() (*types.PodManifest, error) {
	aliases := make([]types.HostAlias, 0, len(p.Config.EtcHosts))
	for _, line := range p.Config.EtcHosts {
		aliases = append(aliases, ParseHostAlias(line))
	}

	container := types.Container{
		Name:            p.Name,
		Image:           p.Image(),
		ImagePullPolicy: types.PullIfNotPresent,
		VolumeMounts: []types.VolumeMount{
			{Name: p.VolumeName, MountPath: p.Config.MountPath},
		},
	}
	volumes := []types.Volume{
		{Name: p.VolumeName, HostPath: &types.HostPathVolumeSource{Path: p.PathVM}},
	}

	if p.Config.ShmSize != "" {
		container.VolumeMounts = append(container.VolumeMounts,
			types.VolumeMount{Name: shmVolumeName, MountPath: shmMountPath})
		volumes = append(volumes, types.Volume{
			Name:     shmVolumeName,
			EmptyDir: &types.EmptyDirVolumeSource{Medium: types.MediumMemory, SizeLimit: p.Config.ShmSize},
		})
	}

	for i, def := range p.Config.Volumes {
		src, dst, err := ParseVolume(def)
		if err != nil {
			return nil, fmt.Errorf("volumes[%d]: %w", i, err)
		}
		vmPath, err := p.translator.HostPathInVM(p.expandHostPath(src))
		if err != nil {
			return nil, fmt.Errorf("volumes[%d] %q: %w", i, def, err)
		}
		name := fmt.Sprintf("volume-%d", i)
		container.VolumeMounts = append(container.VolumeMounts, types.VolumeMount{Name: name, MountPath: dst})
		volumes = append(volumes, types.Volume{Name: name, HostPath: &types.HostPathVolumeSource{Path: vmPath}})
	}

	return &types.PodManifest{
		APIVersion: types.PodAPIVersion,
		Kind:       types.PodKind,
		Metadata:   types.ObjectMeta{Name: p.Name},
		Spec: types.PodSpec{
			HostAliases: aliases,
			Containers:  []types.Container{container},
			Volumes:     volumes,
		},
	}, nil
}

// ManifestYAML renders Manifest as YAML.
func (p *Pod) ManifestYAML() ([]byte, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHostAlias parses an "<ip> <alias1> [<alias2> ...]" line.
func ParseHostAlias(line string) types.HostAlias {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return types.HostAlias{Hostnames: []string{}}
	}
	return types.HostAlias{IP: fields[0], Hostnames: fields[1:]}
}

// ParseVolume splits a "<host_path>:<container_path>" definition.
func ParseVolume(def string) (string, string, error) {
	parts := strings.Split(def, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q, expected \"<host_path>:<container_path>\"", ErrVolumeConfig, def)
	}
	return parts[0], parts[1], nil
}

// expandHostPath resolves ~ and paths relative to the project folder.
func (p *Pod) expandHostPath(path string) string {
	switch {
	case path == "~":
		path = p.home
	case strings.HasPrefix(path, "~/"):
		path = filepath.Join(p.home, path[2:])
	case !filepath.IsAbs(path):
		path = filepath.Join(p.PathHost, path)
	}
	return filepath.Clean(path)
}
