package geocode

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/httpclient"
	"cep-distance-service/internal/platform/obs"
)

const defaultBaseURL = "https://www.codigo-postal.pt"

// Every listed street carries a "pull-right gps" block followed by
// "lat, lon".
var gpsPattern = regexp.MustCompile(`pull-right\s+gps[\s\S]*?([+-]?\d+\.\d+)[\s,]+([+-]?\d+\.\d+)`)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// CodigoPostal scrapes the coordinates listed for a postal code on
// codigo-postal.pt.
type CodigoPostal struct {
	session *http.Client
	baseURL string
	timeout time.Duration
}

func NewCodigoPostal(session *http.Client, baseURL string, timeout time.Duration) *CodigoPostal {
	if session == nil {
		session = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &CodigoPostal{
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Geocode returns every (lat, lon) pair on the lookup page. A page without
// pairs yields an empty slice and no error.
func (c *CodigoPostal) Geocode(ctx context.Context, postalCode string) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, "codigopostal.geocode")(&err)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/?rua=" + url.QueryEscape(postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode %s: create request: %w", postalCode, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := httpclient.Do(c.session, req)
	if err != nil {
		return nil, fmt.Errorf("geocode %s: %w", postalCode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocode %s: read body: %w", postalCode, err)
	}

	return parseCoordinates(string(body)), nil
}

// parseCoordinates extracts pairs from the page. An axis that fails to parse
// is kept as NaN so averaging can skip it independently of the other axis.
func parseCoordinates(html string) []domain.Coordinates {
	matches := gpsPattern.FindAllStringSubmatch(html, -1)
	out := make([]domain.Coordinates, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.Coordinates{
			Lat: parseLenient(m[1]),
			Lon: parseLenient(m[2]),
		})
	}
	return out
}

// parseLenient reads the first number in s, accepting a comma decimal
// separator and non-breaking spaces. It returns NaN when nothing parses.
func parseLenient(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	s = strings.ReplaceAll(s, ",", ".")

	num := numberPattern.FindString(s)
	if num == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
