package pod

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kukushkin/kplay/internal/config"
	"github.com/kukushkin/kplay/internal/minikube"
	"github.com/kukushkin/kplay/internal/types"
)

var linux = minikube.Translator{OS: minikube.Linux}

func newPod(t *testing.T, overrides config.Values, opts Options) *Pod {
	t.Helper()
	t.Setenv("HOME", "/home/alice")
	p, err := New("/home/alice/proj", config.Merge(config.Defaults(), overrides), linux, opts)
	require.NoError(t, err)
	return p
}

func TestNewDerivesIdentity(t *testing.T) {
	p := newPod(t, nil, Options{})

	assert.Equal(t, "proj", p.Name)
	assert.Equal(t, "proj-volume", p.VolumeName)
	assert.Equal(t, "/home/alice/proj", p.PathHost)
	assert.Equal(t, "/hosthome/alice/proj", p.PathVM)
	assert.Equal(t, "/proj", p.Config.MountPath)
	assert.Equal(t, []string{"-c", `cd /proj; exec "${SHELL:-sh}"`}, p.Config.ShellArgs)
}

func TestNewTrailingSlash(t *testing.T) {
	p, err := New("/home/alice/proj/", config.Defaults(), linux, Options{})
	require.NoError(t, err)
	assert.Equal(t, "proj", p.Name)
}

func TestNewExpandsAllVars(t *testing.T) {
	p := newPod(t, config.Values{
		"mount_path": "/work/${name}",
		"etc_hosts":  []any{"10.0.0.1 ${name}.local"},
		"team":       "${path_host}|${path_vm}",
	}, Options{})

	assert.Equal(t, "/work/proj", p.Config.MountPath)
	assert.Equal(t, []string{"10.0.0.1 proj.local"}, p.Config.EtcHosts)
	assert.Equal(t, "/home/alice/proj|/hosthome/alice/proj", p.Config.Extra["team"])
}

func TestNewNotMounted(t *testing.T) {
	_, err := New("/tmp/proj", config.Defaults(), linux, Options{})
	assert.ErrorIs(t, err, minikube.ErrInvalidMount)

	_, err = New("/home/alice/proj", config.Defaults(), minikube.Translator{OS: minikube.Unknown}, Options{})
	assert.ErrorIs(t, err, minikube.ErrUnsupportedPlatform)
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New("/home/alice/proj", config.Merge(config.Defaults(), config.Values{"image": ""}), linux, Options{})
	assert.ErrorIs(t, err, config.ErrParse)
}

func TestManifestDefault(t *testing.T) {
	m, err := newPod(t, nil, Options{}).Manifest()
	require.NoError(t, err)

	want := &types.PodManifest{
		APIVersion: "v1",
		Kind:       "Pod",
		Metadata:   types.ObjectMeta{Name: "proj"},
		Spec: types.PodSpec{
			HostAliases: []types.HostAlias{},
			Containers: []types.Container{{
				Name:            "proj",
				Image:           "dev",
				ImagePullPolicy: "IfNotPresent",
				VolumeMounts:    []types.VolumeMount{{Name: "proj-volume", MountPath: "/proj"}},
			}},
			Volumes: []types.Volume{
				{Name: "proj-volume", HostPath: &types.HostPathVolumeSource{Path: "/hosthome/alice/proj"}},
			},
		},
	}
	assert.Equal(t, want, m)
}

func TestManifestImageOverride(t *testing.T) {
	m, err := newPod(t, config.Values{"image": "from-config"}, Options{Image: "ruby:3"}).Manifest()
	require.NoError(t, err)
	assert.Equal(t, "ruby:3", m.Spec.Containers[0].Image)

	m, err = newPod(t, config.Values{"image": "from-config"}, Options{}).Manifest()
	require.NoError(t, err)
	assert.Equal(t, "from-config", m.Spec.Containers[0].Image)
}

func TestManifestHostAliases(t *testing.T) {
	m, err := newPod(t, config.Values{
		"etc_hosts": []any{"10.0.0.1 foo bar", "  10.0.0.2\tbaz  ", "10.0.0.3"},
	}, Options{}).Manifest()
	require.NoError(t, err)

	assert.Equal(t, []types.HostAlias{
		{IP: "10.0.0.1", Hostnames: []string{"foo", "bar"}},
		{IP: "10.0.0.2", Hostnames: []string{"baz"}},
		{IP: "10.0.0.3", Hostnames: []string{}},
	}, m.Spec.HostAliases)
}

func TestParseHostAlias(t *testing.T) {
	got := ParseHostAlias("10.0.0.1 foo bar")
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.Equal(t, []string{"foo", "bar"}, got.Hostnames)

	got = ParseHostAlias("10.0.0.9")
	assert.Equal(t, "10.0.0.9", got.IP)
	assert.Empty(t, got.Hostnames)
}

func TestManifestExtraVolumes(t *testing.T) {
	m, err := newPod(t, config.Values{
		"volumes": []any{"/home/alice/data:/data", "cache:/cache", "~/.ssh:/root/.ssh"},
	}, Options{}).Manifest()
	require.NoError(t, err)

	assert.Equal(t, []types.VolumeMount{
		{Name: "proj-volume", MountPath: "/proj"},
		{Name: "volume-0", MountPath: "/data"},
		{Name: "volume-1", MountPath: "/cache"},
		{Name: "volume-2", MountPath: "/root/.ssh"},
	}, m.Spec.Containers[0].VolumeMounts)

	assert.Equal(t, []types.Volume{
		{Name: "proj-volume", HostPath: &types.HostPathVolumeSource{Path: "/hosthome/alice/proj"}},
		{Name: "volume-0", HostPath: &types.HostPathVolumeSource{Path: "/hosthome/alice/data"}},
		{Name: "volume-1", HostPath: &types.HostPathVolumeSource{Path: "/hosthome/alice/proj/cache"}},
		{Name: "volume-2", HostPath: &types.HostPathVolumeSource{Path: "/hosthome/alice/.ssh"}},
	}, m.Spec.Volumes)
}

func TestManifestUnmountedVolumeAborts(t *testing.T) {
	p := newPod(t, config.Values{"volumes": []any{"/home/alice/data:/data", "/tmp/data:/data"}}, Options{})

	m, err := p.Manifest()
	assert.Nil(t, m)
	assert.ErrorIs(t, err, minikube.ErrInvalidMount)
	assert.Contains(t, err.Error(), "volumes[1]")

	out, err := p.ManifestYAML()
	assert.Nil(t, out)
	assert.Error(t, err)
}

func TestManifestMalformedVolume(t *testing.T) {
	for _, def := range []string{"nocolon", "a:b:c", ":/data", "/home/alice/x:"} {
		p := newPod(t, config.Values{"volumes": []any{def}}, Options{})
		m, err := p.Manifest()
		assert.Nil(t, m, def)
		assert.True(t, errors.Is(err, ErrVolumeConfig), "%s: got %v", def, err)
	}
}

func TestManifestShmVolume(t *testing.T) {
	m, err := newPod(t, config.Values{"shm_size": "1Gi"}, Options{}).Manifest()
	require.NoError(t, err)

	require.Len(t, m.Spec.Volumes, 2)
	assert.Equal(t, types.Volume{
		Name:     "pod-shm-volume",
		EmptyDir: &types.EmptyDirVolumeSource{Medium: "Memory", SizeLimit: "1Gi"},
	}, m.Spec.Volumes[1])
	assert.Contains(t, m.Spec.Containers[0].VolumeMounts, types.VolumeMount{Name: "pod-shm-volume", MountPath: "/dev/shm"})
}

func TestManifestYAMLDeterministic(t *testing.T) {
	overrides := config.Values{
		"etc_hosts": []any{"10.0.0.1 foo bar"},
		"volumes":   []any{"/home/alice/a:/a", "/home/alice/b:/b"},
		"shm_size":  "256Mi",
	}
	first, err := newPod(t, overrides, Options{}).ManifestYAML()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := newPod(t, overrides, Options{}).ManifestYAML()
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestManifestYAMLFieldOrder(t *testing.T) {
	out, err := newPod(t, nil, Options{}).ManifestYAML()
	require.NoError(t, err)
	s := string(out)

	order := []string{"apiVersion: v1", "kind: Pod", "metadata:", "spec:", "hostAliases:", "containers:", "image: dev", "imagePullPolicy: IfNotPresent", "volumeMounts:", "volumes:", "hostPath:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		require.True(t, idx >= 0, "missing %q in:\n%s", key, s)
		assert.Greater(t, idx, last, "%q out of order in:\n%s", key, s)
		last = idx
	}
	assert.NotContains(t, s, "emptyDir")
	assert.NotContains(t, s, "status")

	var back types.PodManifest
	require.NoError(t, yaml.Unmarshal(out, &back))
	m, err := newPod(t, nil, Options{}).Manifest()
	require.NoError(t, err)
	assert.Equal(t, m.Spec.Volumes, back.Spec.Volumes)
	assert.Equal(t, m.Metadata, back.Metadata)
}
