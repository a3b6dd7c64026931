package vision

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"
)

// Likelihood is the Cloud Vision likelihood scale.
type Likelihood string

const (
	Unknown      Likelihood = "UNKNOWN"
	VeryUnlikely Likelihood = "VERY_UNLIKELY"
	Unlikely     Likelihood = "UNLIKELY"
	Possible     Likelihood = "POSSIBLE"
	Likely       Likelihood = "LIKELY"
	VeryLikely   Likelihood = "VERY_LIKELY"
)

var likelihoodRank = map[Likelihood]int{
	Unknown:      0,
	VeryUnlikely: 1,
	Unlikely:     2,
	Possible:     3,
	Likely:       4,
	VeryLikely:   5,
}

// AtLeast reports whether l is as likely as threshold or more.
func (l Likelihood) AtLeast(threshold Likelihood) bool {
	return likelihoodRank[l] >= likelihoodRank[threshold] && likelihoodRank[l] > 0
}

// SafeSearch is the subset of the SafeSearch annotation this service acts on.
type SafeSearch struct {
	Adult    Likelihood
	Violence Likelihood
	Racy     Likelihood
}

var ErrNoAnnotation = errors.New("vision: response carried no safe search annotation")

// Client runs SafeSearch detection against the Cloud Vision REST API.
type Client struct {
	svc *visionapi.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// DetectSafeSearch annotates the image at a gs:// URI.
func (c *Client) DetectSafeSearch(ctx context.Context, gcsURI string) (SafeSearch, error) {
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image: &visionapi.Image{
				Source: &visionapi.ImageSource{GcsImageUri: gcsURI},
			},
			Features: []*visionapi.Feature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return SafeSearch{}, fmt.Errorf("vision annotate %s: %w", gcsURI, err)
	}
	if len(resp.Responses) == 0 {
		return SafeSearch{}, ErrNoAnnotation
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return SafeSearch{}, fmt.Errorf("vision annotate %s: %s (code %d)", gcsURI, r.Error.Message, r.Error.Code)
	}
	if r.SafeSearchAnnotation == nil {
		return SafeSearch{}, ErrNoAnnotation
	}
	return SafeSearch{
		Adult:    Likelihood(r.SafeSearchAnnotation.Adult),
		Violence: Likelihood(r.SafeSearchAnnotation.Violence),
		Racy:     Likelihood(r.SafeSearchAnnotation.Racy),
	}, nil
}
