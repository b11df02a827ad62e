package skill

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Configuration is the sealed union of per-kind node configurations.
//
// Every variant reports the kind and subKind it belongs to, so a graph can
// refuse a configuration meant for a different node. Consumers switch over
// the concrete types; adding a variant means extending those switches.
type Configuration interface {
	Kind() Kind
	SubKind() SubKind
	isConfiguration()
}

// FieldErrors holds the per-field error strings shown next to a form field.
// Decoding fills every known field with an empty string.
type FieldErrors map[string]string

// Placeholders the deployment step substitutes into a pipeline.
const (
	ParamRTSP                = "$param(rtsp)"
	ParamFPS                 = "$param(fps)"
	ParamDeviceID            = "$param(device_id)"
	ParamInstanceDisplayName = "$param(instance_displayname)"
	ParamDeviceDisplayName   = "$param(device_displayname)"
	ParamSkillDisplayName    = "$param(skill_displayname)"
)

// SourceConfig is the fixed configuration of the camera source.
type SourceConfig struct {
	IP         string `json:"ip" validate:"required"`
	FPS        string `json:"fps" validate:"required"`
	DeviceName string `json:"device_name" validate:"required"`
}

// DefaultSourceConfig returns the placeholder configuration every new graph starts with.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{IP: ParamRTSP, FPS: ParamFPS, DeviceName: ParamDeviceID}
}

// CaptureData selects whether a model node uploads low-confidence frames.
type CaptureData string

const (
	CaptureUnset CaptureData = "-"
	CaptureYes   CaptureData = "yes"
	CaptureNo    CaptureData = "no"
)

// ModelSelection identifies the trained model chosen for a model node.
type ModelSelection struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required"`
}

// ModelConfig configures a model node.
type ModelConfig struct {
	Model           ModelSelection `json:"model"`
	Category        string         `json:"category"`
	CaptureData     CaptureData    `json:"captureData" validate:"omitempty,oneof=yes no -"`
	ConfidenceLower int            `json:"confidence_lower" validate:"min=0,max=100"`
	ConfidenceUpper int            `json:"confidence_upper" validate:"min=0,max=100,gtefield=ConfidenceLower"`
	MaxImages       int            `json:"max_images" validate:"min=0,required_if=CaptureData yes"`
	Errors          FieldErrors    `json:"error,omitempty"`
}

// FilterConfig configures a filter transform.
type FilterConfig struct {
	Labels              []string `json:"labels" validate:"required,min=1,dive,required"`
	ConfidenceThreshold int      `json:"confidence_threshold" validate:"min=0,max=100"`
}

// Grpc transform deployment types.
const (
	GrpcEndpoint  = "endpoint"
	GrpcContainer = "container"
)

// GrpcConfig configures a gRPC transform, either an existing endpoint or a
// container deployed next to the pipeline.
type GrpcConfig struct {
	Type           string `json:"type" validate:"required,oneof=endpoint container"`
	EndpointURL    string `json:"endpoint_url" validate:"required_if=Type endpoint"`
	ContainerName  string `json:"container_name,omitempty" validate:"required_if=Type container"`
	ContainerImage string `json:"container_image,omitempty" validate:"required_if=Type container"`
	CreateOptions  string `json:"create_options,omitempty"`
	RestartPolicy  string `json:"restart_policy,omitempty"`
	Port           int    `json:"port,omitempty" validate:"required_if=Type container,max=65535"`
	Route          string `json:"route,omitempty"`
}

// SnippetConfig configures a video snippet export.
type SnippetConfig struct {
	FilenamePrefix    string      `json:"filename_prefix" validate:"required"`
	RecordingDuration string      `json:"recording_duration" validate:"required,numeric"`
	InsightsOverlay   string      `json:"insights_overlay" validate:"required,oneof=true false"`
	DelayBuffer       string      `json:"delay_buffer" validate:"required,numeric"`
	Errors            FieldErrors `json:"error,omitempty"`
}

// IoTHubConfig configures an IoT Hub export.
type IoTHubConfig struct {
	DelayBuffer string      `json:"delay_buffer" validate:"required,numeric"`
	Errors      FieldErrors `json:"error,omitempty"`
}

// IoTEdgeConfig configures an IoT Edge module export.
type IoTEdgeConfig struct {
	DelayBuffer string      `json:"delay_buffer" validate:"required,numeric"`
	ModuleName  string      `json:"module_name" validate:"required"`
	ModuleInput string      `json:"module_input" validate:"required"`
	Errors      FieldErrors `json:"error,omitempty"`
}

// HTTPConfig configures an HTTP export.
type HTTPConfig struct {
	URL    string      `json:"url" validate:"required,url"`
	Errors FieldErrors `json:"error,omitempty"`
}

// MQTTConfig configures an MQTT export.
type MQTTConfig struct {
	DelayBuffer   string      `json:"delay_buffer" validate:"required,numeric"`
	BrokerAddress string      `json:"broker_address" validate:"required"`
	Errors        FieldErrors `json:"error,omitempty"`
}

func (SourceConfig) Kind() Kind  { return KindSource }
func (ModelConfig) Kind() Kind   { return KindModel }
func (FilterConfig) Kind() Kind  { return KindTransform }
func (GrpcConfig) Kind() Kind    { return KindTransform }
func (SnippetConfig) Kind() Kind { return KindExport }
func (IoTHubConfig) Kind() Kind  { return KindExport }
func (IoTEdgeConfig) Kind() Kind { return KindExport }
func (HTTPConfig) Kind() Kind    { return KindExport }
func (MQTTConfig) Kind() Kind    { return KindExport }

func (SourceConfig) SubKind() SubKind  { return SubKindNone }
func (ModelConfig) SubKind() SubKind   { return SubKindNone }
func (FilterConfig) SubKind() SubKind  { return SubKindFilter }
func (GrpcConfig) SubKind() SubKind    { return SubKindGrpc }
func (SnippetConfig) SubKind() SubKind { return SubKindSnippet }
func (IoTHubConfig) SubKind() SubKind  { return SubKindIoTHub }
func (IoTEdgeConfig) SubKind() SubKind { return SubKindIoTEdge }
func (HTTPConfig) SubKind() SubKind    { return SubKindHTTP }
func (MQTTConfig) SubKind() SubKind    { return SubKindMQTT }

func (SourceConfig) isConfiguration()  {}
func (ModelConfig) isConfiguration()   {}
func (FilterConfig) isConfiguration()  {}
func (GrpcConfig) isConfiguration()    {}
func (SnippetConfig) isConfiguration() {}
func (IoTHubConfig) isConfiguration()  {}
func (IoTEdgeConfig) isConfiguration() {}
func (HTTPConfig) isConfiguration()    {}
func (MQTTConfig) isConfiguration()    {}

// NewConfiguration returns the zero configuration for the given kind and
// subKind, or nil if the combination is unknown.
func NewConfiguration(kind Kind, sub SubKind) Configuration {
	switch kind {
	case KindSource:
		return SourceConfig{}
	case KindModel:
		return ModelConfig{}
	}
	switch sub {
	case SubKindFilter:
		return FilterConfig{}
	case SubKindGrpc:
		return GrpcConfig{}
	case SubKindSnippet:
		return SnippetConfig{}
	case SubKindIoTHub:
		return IoTHubConfig{}
	case SubKindIoTEdge:
		return IoTEdgeConfig{}
	case SubKindHTTP:
		return HTTPConfig{}
	case SubKindMQTT:
		return MQTTConfig{}
	}
	return nil
}

// ExportFieldErrors returns the empty error map used for every export form.
func ExportFieldErrors() FieldErrors {
	return FieldErrors{
		"filename_prefix":    "",
		"recording_duration": "",
		"insights_overlay":   "",
		"broker_address":     "",
		"delay_buffer":       "",
		"module_name":        "",
		"url":                "",
	}
}

// ModelFieldErrors returns the empty error map of the model form.
func ModelFieldErrors() FieldErrors {
	return FieldErrors{
		"captureData":      "",
		"confidence_lower": "",
		"confidence_upper": "",
		"max_images":       "",
		"model":            "",
	}
}

var validate = validator.New()

// ValidateConfiguration checks c against its field constraints.
func ValidateConfiguration(c Configuration) error {
	if c == nil {
		return fmt.Errorf("%w: missing configuration", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, formatValidationError(err))
	}
	return nil
}

// normalize fills derived fields before a configuration is stored.
func normalize(c Configuration) Configuration {
	switch cfg := c.(type) {
	case GrpcConfig:
		switch cfg.Type {
		case GrpcContainer:
			if cfg.EndpointURL == "" {
				cfg.EndpointURL = fmt.Sprintf("%s:%d%s", cfg.ContainerName, cfg.Port, cfg.Route)
			}
		case GrpcEndpoint:
			// container settings are not on the wire for endpoints
			cfg.ContainerName, cfg.ContainerImage = "", ""
			cfg.CreateOptions, cfg.RestartPolicy = "", ""
			cfg.Port, cfg.Route = 0, ""
		}
		return cfg
	case ModelConfig:
		// max_images is the only capture setting on the wire
		if cfg.CaptureData != CaptureYes {
			cfg.CaptureData = CaptureNo
			cfg.MaxImages = 0
		}
		return cfg
	}
	return c
}

func cloneConfiguration(c Configuration) Configuration {
	switch cfg := c.(type) {
	case ModelConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	case FilterConfig:
		cfg.Labels = slices.Clone(cfg.Labels)
		return cfg
	case SnippetConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	case IoTHubConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	case IoTEdgeConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	case HTTPConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	case MQTTConfig:
		cfg.Errors = maps.Clone(cfg.Errors)
		return cfg
	}
	return c
}

func formatValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gtefield":
		return fmt.Sprintf("%s must not be below %s", field, strings.ToLower(e.Param()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
