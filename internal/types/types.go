// Package types defines the Pod manifest kplay submits to the cluster.
//
// Field order is significant: the manifest is rendered in declaration order
// so that the same inputs always produce the same bytes.
package types

const (
	PodAPIVersion = "v1"
	PodKind       = "Pod"

	PullIfNotPresent = "IfNotPresent"
	MediumMemory     = "Memory"
)

// PodManifest is the top-level structure of a Pod manifest.
type PodManifest struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Metadata   ObjectMeta `yaml:"metadata"`
	Spec       PodSpec    `yaml:"spec"`
}

// ObjectMeta holds identity metadata for a pod.
type ObjectMeta struct {
	Name string `yaml:"name"`
}

// PodSpec is the spec section of a PodManifest.
type PodSpec struct {
	HostAliases []HostAlias `yaml:"hostAliases"`
	Containers  []Container `yaml:"containers"`
	Volumes     []Volume    `yaml:"volumes"`
}

// HostAlias is one /etc/hosts entry inside the pod.
type HostAlias struct {
	IP        string   `yaml:"ip"`
	Hostnames []string `yaml:"hostnames"`
}

// Container describes the single container of a kplay pod.
type Container struct {
	Name            string        `yaml:"name"`
	Image           string        `yaml:"image"`
	ImagePullPolicy string        `yaml:"imagePullPolicy"`
	VolumeMounts    []VolumeMount `yaml:"volumeMounts"`
}

// VolumeMount mounts a named pod volume into the container.
type VolumeMount struct {
	Name      string `yaml:"name"`
	MountPath string `yaml:"mountPath"`
}

// Volume is a pod volume. Exactly one of HostPath and EmptyDir is set.
type Volume struct {
	Name     string                `yaml:"name"`
	HostPath *HostPathVolumeSource `yaml:"hostPath,omitempty"`
	EmptyDir *EmptyDirVolumeSource `yaml:"emptyDir,omitempty"`
}

// HostPathVolumeSource refers to a path on the minikube VM.
type HostPathVolumeSource struct {
	Path string `yaml:"path"`
}

// EmptyDirVolumeSource is a scratch volume living as long as the pod.
type EmptyDirVolumeSource struct {
	Medium    string `yaml:"medium,omitempty"`
	SizeLimit string `yaml:"sizeLimit,omitempty"`
}
