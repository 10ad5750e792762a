package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
)

const directionsPath = "/directions/json"

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		WaypointOrder []int `json:"waypoint_order"`
	} `json:"routes"`
}

// Optimizer implements ports.WaypointOptimizer with the Directions API and
// waypoints=optimize:true.
type Optimizer struct {
	client *Client
}

func NewOptimizer(client *Client) *Optimizer {
	return &Optimizer{client: client}
}

// OptimizeWaypoints returns waypoint_order of the first route. Validating the
// permutation is left to the caller.
func (o *Optimizer) OptimizeWaypoints(
	ctx context.Context,
	origin, destination kernel.Position,
	waypoints []kernel.Position,
) ([]int, error) {
	parts := make([]string, 0, len(waypoints)+1)
	parts = append(parts, "optimize:true")
	for _, w := range waypoints {
		parts = append(parts, latLng(w))
	}

	query := url.Values{}
	query.Set("origin", latLng(origin))
	query.Set("destination", latLng(destination))
	query.Set("waypoints", strings.Join(parts, "|"))

	resp, err := o.client.get(ctx, "directions", directionsPath, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}
	if decoded.Status != "OK" {
		return nil, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage}
	}
	if len(decoded.Routes) == 0 {
		return nil, &apiStatusError{Status: "NO_ROUTES"}
	}

	return decoded.Routes[0].WaypointOrder, nil
}

func latLng(p kernel.Position) string {
	return strconv.FormatFloat(p.Lat(), 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng(), 'f', 6, 64)
}
