package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/Darshanscodehub/CodeCollab/core"
)

var (
	jwtSecret         []byte
	githubOauthConfig *oauth2.Config
)

// tokenTTL bounds how long a login stays valid.
const tokenTTL = time.Hour

// AppClaims represents the custom claims for the JWT. Subject carries the
// user ID (or "github:<id>" for social logins).
type AppClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type (
	SignupRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Message string     `json:"message"`
		Token   string     `json:"token"`
		User    *core.User `json:"user"`
	}
)

// Init reads the signing secret and the optional GitHub OAuth credentials
// from the environment.
func Init() {
	jwtSecret = []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logrus.Warn("JWT_SECRET is not set. Authentication will not work.")
	}

	githubOauthConfig = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}
	if githubOauthConfig.ClientID == "" || githubOauthConfig.ClientSecret == "" {
		logrus.Info("GitHub OAuth credentials are not set. Social login routes are disabled.")
	}
}

// HandleSignup registers a new account with a bcrypt-hashed password.
func HandleSignup(store core.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Invalid request body"})
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "All fields required"})
			return
		}

		if existing, _ := store.FindUserByEmail(r.Context(), req.Email); existing != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Email already exists"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Error("Failed to hash password")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Failed to create account"})
			return
		}

		user := &core.User{
			ID:           ulid.Make().String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		if err := store.CreateUser(r.Context(), user); err != nil {
			logrus.WithError(err).WithField("email", req.Email).Error("Failed to create user")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Failed to create account"})
			return
		}

		render.JSON(w, r, map[string]string{"message": "Signup successful!"})
	}
}

// HandleLogin verifies credentials and issues a JWT.
func HandleLogin(store core.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Invalid request body"})
			return
		}

		user, err := store.FindUserByEmail(r.Context(), req.Email)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "User not found"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Invalid credentials"})
			return
		}

		token, err := CreateJWT(user.ID, user.Name, user.Email)
		if err != nil {
			logrus.WithError(err).Error("Failed to create JWT")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Failed to create token"})
			return
		}

		render.JSON(w, r, LoginResponse{
			Message: "Login successful",
			Token:   token,
			User:    user,
		})
	}
}

func generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
	})
	return state
}

// HandleGitHubLogin redirects to GitHub's consent screen.
func HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if githubOauthConfig == nil || githubOauthConfig.ClientID == "" {
		http.Error(w, "GitHub OAuth is not configured", http.StatusInternalServerError)
		return
	}
	state := generateStateOauthCookie(w)
	url := githubOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleGitHubCallback exchanges the code, fetches the GitHub profile and
// issues a JWT without creating a stored account; snippet ownership keys off
// the "github:<id>" subject.
func HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if githubOauthConfig == nil || githubOauthConfig.ClientID == "" {
		http.Error(w, "GitHub OAuth is not configured", http.StatusInternalServerError)
		return
	}

	token, err := githubOauthConfig.Exchange(context.Background(), r.FormValue("code"))
	if err != nil {
		logrus.Errorf("failed to exchange token: %s", err.Error())
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	client := githubOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		logrus.Errorf("failed to get user from github: %s", err.Error())
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logrus.Errorf("failed to read github response body: %s", err.Error())
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	var githubUser struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &githubUser); err != nil {
		logrus.Errorf("failed to unmarshal github user: %s", err.Error())
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	name := githubUser.Name
	if name == "" {
		name = githubUser.Login
	}
	jwtToken, err := CreateJWT(fmt.Sprintf("github:%d", githubUser.ID), name, "")
	if err != nil {
		logrus.Errorf("failed to create JWT: %s", err.Error())
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/?token=%s", jwtToken), http.StatusTemporaryRedirect)
}

// CreateJWT signs an HS256 token for the given identity.
func CreateJWT(subject, name, email string) (string, error) {
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name:  name,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates a token string and returns its claims.
func ParseJWT(tokenString string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
