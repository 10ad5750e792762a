package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"lastmile/internal/core/ports"
)

const geocodePath = "/geocode/json"

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocoder implements ports.Geocoder.
type Geocoder struct {
	client *Client
}

func NewGeocoder(client *Client) *Geocoder {
	return &Geocoder{client: client}
}

// Resolve looks up one address. ZERO_RESULTS is an answer, not an error: it
// yields Valid=false.
func (g *Geocoder) Resolve(ctx context.Context, address string) (ports.GeocodeResult, error) {
	query := url.Values{}
	query.Set("address", address)
	if g.client.components != "" {
		query.Set("components", g.client.components)
	}

	resp, err := g.client.get(ctx, "geocode", geocodePath, query)
	if err != nil {
		return ports.GeocodeResult{}, err
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("decode geocode response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return ports.GeocodeResult{FormattedAddress: address, Warning: "address not found"}, nil
	default:
		return ports.GeocodeResult{}, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage}
	}

	if len(decoded.Results) == 0 {
		return ports.GeocodeResult{FormattedAddress: address, Warning: "address not found"}, nil
	}

	first := decoded.Results[0]
	result := ports.GeocodeResult{
		Valid:            true,
		FormattedAddress: first.FormattedAddress,
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
	}
	for _, component := range first.AddressComponents {
		if slices.Contains(component.Types, "locality") {
			result.Locality = component.LongName
			break
		}
	}
	return result, nil
}
