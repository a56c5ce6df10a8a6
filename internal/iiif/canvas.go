package iiif

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Canvas is one page of a manifest.
type Canvas struct {
	raw json.RawMessage

	ID       string
	Label    Value
	Metadata []MetadataEntry
	// ImageService is the base URI of the IIIF Image API service backing the
	// canvas, or "" when none could be found.
	ImageService string
}

// Thumbnail returns a best-fit derivative URL no larger than size×size
// pixels, or "" when the canvas has no image service.
func (c Canvas) Thumbnail(size int) string {
	if c.ImageService == "" {
		return ""
	}
	return fmt.Sprintf("%s/full/!%d,%d/0/default.jpg", c.ImageService, size, size)
}

// InfoURL returns the image service info.json URL.
func (c Canvas) InfoURL() string {
	if c.ImageService == "" {
		return ""
	}
	return c.ImageService + "/info.json"
}

// canvasDoc covers both schema shapes:
// v3 items[0].items[0].body.service[0], v2 images[0].resource.service.
type canvasDoc struct {
	ID    string          `json:"id"`
	AtID  string          `json:"@id"`
	Label json.RawMessage `json:"label"`
	Meta  json.RawMessage `json:"metadata"`
	Items []struct {
		Items []struct {
			Body json.RawMessage `json:"body"`
		} `json:"items"`
	} `json:"items"`
	Images []struct {
		Resource struct {
			Service json.RawMessage `json:"service"`
		} `json:"resource"`
	} `json:"images"`
}

func parseCanvas(raw json.RawMessage, version Version) Canvas {
	canvas := Canvas{raw: raw}

	var doc canvasDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		// keep the raw canvas so exports stay faithful
		var ids map[string]json.RawMessage
		if json.Unmarshal(raw, &ids) == nil {
			canvas.ID = firstString(ids, "id", "@id")
			decodeLenient(ids["label"], &canvas.Label)
			canvas.Metadata = parseMetadata(ids["metadata"])
		}
		return canvas
	}

	canvas.ID = doc.ID
	if canvas.ID == "" {
		canvas.ID = doc.AtID
	}
	decodeLenient(doc.Label, &canvas.Label)
	canvas.Metadata = parseMetadata(doc.Meta)

	if version == V3 {
		if len(doc.Items) > 0 && len(doc.Items[0].Items) > 0 {
			canvas.ImageService = bodyService(doc.Items[0].Items[0].Body)
		}
	} else if len(doc.Images) > 0 {
		canvas.ImageService = serviceID(doc.Images[0].Resource.Service)
	}
	canvas.ImageService = strings.TrimSuffix(canvas.ImageService, "/")

	return canvas
}

// bodyService reads the service of an annotation body, which may itself be
// an array of bodies or a Choice with items.
func bodyService(raw json.RawMessage) string {
	var body struct {
		Service json.RawMessage   `json:"service"`
		Items   []json.RawMessage `json:"items"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if id := serviceID(body.Service); id != "" {
			return id
		}
		for _, item := range body.Items {
			if id := bodyService(item); id != "" {
				return id
			}
		}
		return ""
	}

	var bodies []json.RawMessage
	if json.Unmarshal(raw, &bodies) == nil {
		for _, b := range bodies {
			if id := bodyService(b); id != "" {
				return id
			}
		}
	}
	return ""
}

// serviceID reads id/@id from a service that is an object or an array of
// objects.
func serviceID(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		return firstString(obj, "id", "@id")
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			if id := serviceID(item); id != "" {
				return id
			}
		}
	}
	return ""
}
