// File path: internal/research/linkedin.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldscale/povd/internal/common"
)

const profileAPIEndpoint = "https://nubela.co/proxycurl/api/v2/linkedin"

var linkedinURLRe = regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/[a-zA-Z0-9-_/]+`)

// ProfileService fetches LinkedIn profiles through a Proxycurl-style API
// and renders them as Markdown digests.
type ProfileService struct {
	client      *http.Client
	apiKey      string
	endpoint    string
	maxParallel int
}

func NewProfileService(apiKey string, maxParallel int) *ProfileService {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &ProfileService{
		client:      &http.Client{Timeout: 30 * time.Second},
		apiKey:      apiKey,
		endpoint:    profileAPIEndpoint,
		maxParallel: maxParallel,
	}
}

// ExtractLinkedInURLs pulls profile URLs out of free text. Pasted text
// often runs URLs together, so a space is forced before each scheme first.
func ExtractLinkedInURLs(text string) []string {
	preprocessed := strings.TrimSpace(strings.ReplaceAll(text, "https:", " https:"))
	return linkedinURLRe.FindAllString(preprocessed, -1)
}

// FetchProfiles resolves every LinkedIn URL found in raw concurrently and
// joins the formatted profiles. Individual fetch failures are skipped.
func (p *ProfileService) FetchProfiles(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", fmt.Errorf("profile API key not configured")
	}
	urls := ExtractLinkedInURLs(raw)
	if len(urls) == 0 {
		return "", fmt.Errorf("no LinkedIn profile URLs found in input")
	}
	logger := common.Logger()
	logger.Info("research: fetching LinkedIn profiles", "count", len(urls))

	formatted := make([]string, len(urls))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.maxParallel)
	for i, profileURL := range urls {
		i, profileURL := i, profileURL
		group.Go(func() error {
			profile, err := p.fetchProfile(groupCtx, profileURL)
			if err != nil {
				logger.Warn("research: profile fetch failed", "url", profileURL, "error", err)
				return nil
			}
			formatted[i] = formatProfile(profile)
			return nil
		})
	}
	group.Wait()

	parts := make([]string, 0, len(formatted))
	for _, text := range formatted {
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("all %d profile fetches failed", len(urls))
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}

type profileDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type profileExperience struct {
	Company  string       `json:"company"`
	Title    string       `json:"title"`
	StartsAt *profileDate `json:"starts_at"`
	EndsAt   *profileDate `json:"ends_at"`
}

type profileEducation struct {
	School     string       `json:"school"`
	DegreeName string       `json:"degree_name"`
	StartsAt   *profileDate `json:"starts_at"`
	EndsAt     *profileDate `json:"ends_at"`
}

type linkedinProfile struct {
	FullName       string              `json:"full_name"`
	FirstName      string              `json:"first_name"`
	Occupation     string              `json:"occupation"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	FollowerCount  int                 `json:"follower_count"`
	Connections    int                 `json:"connections"`
	Experiences    []profileExperience `json:"experiences"`
	Education      []profileEducation  `json:"education"`
	Certifications []struct {
		Name string `json:"name"`
	} `json:"certifications"`
	Groups []struct {
		Name string `json:"name"`
	} `json:"groups"`
}

func (p *ProfileService) fetchProfile(ctx context.Context, profileURL string) (*linkedinProfile, error) {
	endpoint := p.endpoint + "?" + url.Values{"url": {profileURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile API status %d", resp.StatusCode)
	}
	var profile linkedinProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func formatDateRange(start, end *profileDate) string {
	format := func(d *profileDate) string {
		if d == nil || d.Year == 0 {
			return "Present"
		}
		return fmt.Sprintf("%02d/%d", d.Month, d.Year)
	}
	return format(start) + " - " + format(end)
}

func formatProfile(profile *linkedinProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s - Professional Profile\n\n", profile.FullName)
	fmt.Fprintf(&sb, "## Background\n%s is a %s, based in %s, %s.\n\n", profile.FullName, profile.Occupation, profile.City, profile.State)

	sb.WriteString("## Work Experience\n")
	for _, job := range profile.Experiences {
		fmt.Fprintf(&sb, "- **%s** (%s): %s worked as a %s at %s\n", job.Company, formatDateRange(job.StartsAt, job.EndsAt), profile.FirstName, job.Title, job.Company)
	}

	sb.WriteString("\n## Education\n")
	for _, edu := range profile.Education {
		degree := edu.DegreeName
		if degree == "" {
			degree = "degree"
		}
		fmt.Fprintf(&sb, "- **%s** (%s): %s obtained a %s from %s.\n", edu.School, formatDateRange(edu.StartsAt, edu.EndsAt), profile.FirstName, degree, edu.School)
	}

	if len(profile.Certifications) > 0 {
		sb.WriteString("\n## Certifications\n")
		for _, cert := range profile.Certifications {
			fmt.Fprintf(&sb, "%s is recognized as a %s\n", profile.FirstName, cert.Name)
		}
	}

	fmt.Fprintf(&sb, "\n## Connections\n%s has %d followers and %d connections on LinkedIn.\n", profile.FirstName, profile.FollowerCount, profile.Connections)

	if len(profile.Groups) > 0 {
		sb.WriteString("\n## Groups\n")
		for _, group := range profile.Groups {
			fmt.Fprintf(&sb, "%s is a member of professional groups on LinkedIn, including %s.\n", profile.FirstName, group.Name)
		}
	}
	return sb.String()
}
