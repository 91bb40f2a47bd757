package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Endpoints are set by hand so the google subpackage (and its cloud
// metadata dependency) stays out of the build.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleUserStore is the slice of the store the OAuth callback needs.
type GoogleUserStore interface {
	UserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID, picture string) error
}

type GoogleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Google drives the federated login flow against Google's OAuth endpoints.
type Google struct {
	cfg   *oauth2.Config
	users GoogleUserStore
}

func NewGoogle(clientID, clientSecret, redirectURL string, users GoogleUserStore) *Google {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: googleEndpoint,
		},
		users: users,
	}
}

// AuthURL returns the consent-screen redirect for the given state nonce.
func (g *Google) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// FetchProfile exchanges the callback code and loads the user's profile.
func (g *Google) FetchProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	resp, err := g.cfg.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}
	return &profile, nil
}

// ResolveUser maps a Google profile onto a user: an existing federated
// account wins; otherwise a local account with the same email adopts the
// Google identity, keeping its role and history; otherwise a new account
// is created.
func (g *Google) ResolveUser(ctx context.Context, profile *GoogleProfile) (*models.User, error) {
	user, err := g.users.UserByGoogleID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	existing, err := g.users.UserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := g.users.LinkGoogleAccount(ctx, existing.ID, profile.ID, profile.Picture); err != nil {
			return nil, err
		}
		existing.GoogleID = profile.ID
		if profile.Picture != "" {
			existing.Picture = profile.Picture
		}
		return existing, nil
	}

	newUser := &models.User{
		Username:   GoogleUsername(profile.Name, profile.ID),
		Email:      profile.Email,
		GoogleID:   profile.ID,
		Picture:    profile.Picture,
		Role:       models.RoleUser,
		AuthMethod: models.AuthMethodGoogle,
	}
	if msgs := validation.ValidateNewUser(newUser); len(msgs) > 0 {
		return nil, fmt.Errorf("federated profile rejected: %s", strings.Join(msgs, "; "))
	}
	id, err := g.users.CreateUser(ctx, newUser)
	if err != nil {
		return nil, err
	}
	newUser.ID = id
	return newUser, nil
}

// GoogleUsername derives a username from the display name plus a slice of
// the Google ID to keep collisions unlikely.
func GoogleUsername(displayName, googleID string) string {
	name := strings.ReplaceAll(displayName, " ", "")
	if name == "" {
		name = "user"
	}
	suffix := googleID
	if len(suffix) > 5 {
		suffix = suffix[:5]
	}
	return name + suffix
}
