// Package views holds one controller per front-end page. A controller owns
// its view model and writes it only after its API call has returned.
package views

import (
	"context"
	"strings"

	"github.com/bpmonitor/capstone/internal/chart"
	"github.com/bpmonitor/capstone/internal/client/nav"
	"github.com/bpmonitor/capstone/internal/models"
)

// Backend is the subset of the API used by the controllers.
type Backend interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	LoggedIn(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	FindAllBPForUser(ctx context.Context, userID string) ([]models.BloodPressure, error)
	FindSampleDataForUser(ctx context.Context, userID string) ([]models.Sample, error)
}

// Outcome tells the caller whether to navigate after an action.
type Outcome struct {
	Navigate bool
	To       nav.Page
}

func stay() Outcome { return Outcome{} }

func goTo(p nav.Page) Outcome { return Outcome{Navigate: true, To: p} }

// LoginController backs the login page.
type LoginController struct {
	API     Backend
	Current *nav.CurrentUser
}

// Login checks the credentials. On a match the user is cached and the
// profile page follows; otherwise nothing happens.
func (c *LoginController) Login(ctx context.Context, username, password string) (Outcome, error) {
	if username == "" {
		return stay(), nil
	}
	user, err := c.API.Login(ctx, username, password)
	if err != nil || user == nil {
		return stay(), err
	}
	c.Current.Set(user)
	return goTo(nav.Profile), nil
}

// RegisterController backs the registration page.
type RegisterController struct {
	API     Backend
	Current *nav.CurrentUser
}

// Register creates the account and continues to the profile page.
func (c *RegisterController) Register(ctx context.Context, user models.User) (Outcome, error) {
	created, err := c.API.Register(ctx, user)
	if err != nil || created == nil {
		return stay(), err
	}
	c.Current.Set(created)
	return goTo(nav.Profile), nil
}

// ProfileForm is the editable profile. Emails and Phones are typed as
// comma-separated lists.
type ProfileForm struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Emails    string
	Phones    string
}

// ProfileController backs the profile page.
type ProfileController struct {
	API     Backend
	Current *nav.CurrentUser

	// User is the profile shown on the page.
	User *models.User
}

// Init loads the session user into the view model.
func (c *ProfileController) Init(ctx context.Context) error {
	user, err := c.API.LoggedIn(ctx)
	if err != nil {
		return err
	}
	c.User = user
	return nil
}

// Form returns the current profile in editable form.
func (c *ProfileController) Form() ProfileForm {
	if c.User == nil {
		return ProfileForm{}
	}
	return ProfileForm{
		Username:  c.User.Username,
		Password:  c.User.Password,
		FirstName: c.User.FirstName,
		LastName:  c.User.LastName,
		Emails:    strings.Join(c.User.Emails, ","),
		Phones:    strings.Join(c.User.Phones, ","),
	}
}

// Update saves the form onto the loaded user.
func (c *ProfileController) Update(ctx context.Context, form ProfileForm) (Outcome, error) {
	if c.User == nil {
		return stay(), nil
	}
	emails, phones := SplitList(form.Emails), SplitList(form.Phones)
	patch := models.UserPatch{
		Username:  &form.Username,
		Password:  &form.Password,
		FirstName: &form.FirstName,
		LastName:  &form.LastName,
		Emails:    &emails,
		Phones:    &phones,
	}

	user, err := c.API.UpdateUser(ctx, c.User.ID, patch)
	if err != nil || user == nil {
		return stay(), err
	}
	c.User = user
	c.Current.Set(user)
	return goTo(nav.Profile), nil
}

// SplitList splits a comma-separated field, trimming blanks and dropping
// empty entries.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SampleCharts are the linked impedance and pressure charts of one sample.
type SampleCharts struct {
	Sample models.Sample
	Ranges *chart.LinkedRanges
}

// HomeController backs the dashboard.
type HomeController struct {
	API     Backend
	Current *nav.CurrentUser

	BP     []models.BloodPressure
	Charts []SampleCharts
}

// Init loads the blood-pressure records and sample charts of the cached
// user. It does nothing when no user is cached.
func (c *HomeController) Init(ctx context.Context) error {
	user := c.Current.Get()
	if user == nil {
		return nil
	}

	bp, err := c.API.FindAllBPForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	samples, err := c.API.FindSampleDataForUser(ctx, user.ID)
	if err != nil {
		return err
	}

	charts := make([]SampleCharts, 0, len(samples))
	for _, s := range samples {
		charts = append(charts, SampleCharts{Sample: s, Ranges: chart.NewLinkedRanges(s.Measurements)})
	}
	c.BP, c.Charts = bp, charts
	return nil
}

// HeaderController backs the navigation bar.
type HeaderController struct {
	API     Backend
	Current *nav.CurrentUser
}

// Logout forgets the cached user, ends the server session and returns to
// the welcome page. The page changes even if the server call fails.
func (c *HeaderController) Logout(ctx context.Context) (Outcome, error) {
	c.Current.Set(nil)
	return goTo(nav.Welcome), c.API.Logout(ctx)
}
