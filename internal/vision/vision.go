// Package vision wraps the Google Cloud Vision API for image annotation.
// It exposes the label, object, and face annotations the event pipeline
// classifies on.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/mealmate-bot/mealmate/internal/config"
)

// ErrNoAnnotations indicates the service returned no usable annotations
// for the image.
var ErrNoAnnotations = errors.New("vision service returned no annotations")

// Annotation is the structured result of annotating one image. Labels and
// Objects preserve the order returned by the service; the first label is
// used downstream as the canonical subject name.
type Annotation struct {
	Labels    []string
	Objects   []string
	FaceCount int
}

// Client wraps the Cloud Vision image annotator.
type Client struct {
	annotator *visionapi.ImageAnnotatorClient
	maxLabels int32
	log       *slog.Logger
}

// NewClient creates a Cloud Vision client. When cfg.CredentialsFile is
// empty, application default credentials are used.
func NewClient(ctx context.Context, cfg config.VisionConfig, log *slog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	annotator, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	logger := log.With("component", "vision_client")
	logger.Info("Vision client initialized", "max_labels", cfg.MaxLabels)
	return &Client{
		annotator: annotator,
		maxLabels: cfg.MaxLabels,
		log:       logger,
	}, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.annotator.Close()
}

// Annotate runs label, object, and face detection on the image bytes and
// returns the combined annotation. A response without any annotation at
// all yields ErrNoAnnotations.
func (c *Client) Annotate(ctx context.Context, image []byte) (*Annotation, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image content is empty")
	}

	// vision/v2 has no single-image AnnotateImage helper; this is the
	// equivalent one-request batch call the v1 helper wrapped.
	batch, err := c.annotator.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: c.maxLabels},
				{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: c.maxLabels},
				{Type: visionpb.Feature_FACE_DETECTION, MaxResults: c.maxLabels},
			},
		}},
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Vision annotation request failed", "error", err)
		return nil, fmt.Errorf("vision annotation failed: %w", err)
	}
	resp := batch.Responses[0]
	if resp.Error != nil {
		c.log.ErrorContext(ctx, "Vision annotation returned an error status", "code", resp.Error.Code, "message", resp.Error.Message)
		return nil, fmt.Errorf("vision annotation failed: %s", resp.Error.Message)
	}

	ann := &Annotation{FaceCount: len(resp.FaceAnnotations)}
	for _, l := range resp.LabelAnnotations {
		ann.Labels = append(ann.Labels, l.Description)
	}
	for _, o := range resp.LocalizedObjectAnnotations {
		ann.Objects = append(ann.Objects, o.Name)
	}

	if len(ann.Labels) == 0 && len(ann.Objects) == 0 && ann.FaceCount == 0 {
		c.log.WarnContext(ctx, "Vision annotation returned no annotations")
		return nil, ErrNoAnnotations
	}

	c.log.DebugContext(ctx, "Image annotated",
		"labels", len(ann.Labels), "objects", len(ann.Objects), "faces", ann.FaceCount)
	return ann, nil
}
