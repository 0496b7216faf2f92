package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/user"
)

const stateCookie = "oauth_state"

func setSession(c *gin.Context, sessions *auth.Sessions, u *user.User) bool {
	token, err := sessions.Start(c.Request.Context(), u.ID)
	if err != nil {
		httpx.Fail(c, err)
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(sessions.TTL().Seconds()), "/", "", false, true)
	return true
}

// @Summary  Start a registration; mails a one-time code
// @Tags     accounts
// @Accept   json
// @Produce  json
// @Param    input body user.RegisterRequest true "Sign-up"
// @Success  201 {object} map[string]string
// @Failure  400 {object} httpx.HTTPError
// @Router   /register [post]
func registerHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBind(&req); err != nil {
			httpx.BadRequest(c, "invalid registration")
			return
		}
		id, err := users.Register(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"pending_id": id, "message": "OTP sent to your email"})
	}
}

// @Summary  Confirm a registration with its code
// @Tags     accounts
// @Accept   json
// @Produce  json
// @Param    input body user.VerifyRequest true "Code"
// @Success  201 {object} user.User
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /verify-otp [post]
func verifyOTPHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.VerifyRequest
		if err := c.ShouldBind(&req); err != nil || req.PendingID == "" {
			httpx.BadRequest(c, "pending_id and otp are required")
			return
		}
		u, err := users.VerifyOTP(c.Request.Context(), req.PendingID, req.OTP)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// @Summary  Log in with email and password
// @Tags     accounts
// @Accept   json
// @Produce  json
// @Param    input body user.LoginRequest true "Credentials"
// @Success  200 {object} user.User
// @Failure  401 {object} httpx.HTTPError
// @Router   /login [post]
func loginHandler(users *user.Service, sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			httpx.BadRequest(c, "invalid login")
			return
		}
		u, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !setSession(c, sessions, u) {
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary  End the current session
// @Tags     accounts
// @Success  204
// @Router   /logout [post]
func logoutHandler(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(auth.CookieName); err == nil {
			if err := sessions.End(c.Request.Context(), token); err != nil {
				log.Printf("[http] rid=%s end session: %v", httpx.RID(c), err)
			}
		}
		c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Who am I
// @Tags     accounts
// @Produce  json
// @Success  200 {object} auth.Principal
// @Failure  401 {object} httpx.HTTPError
// @Router   /me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func signState(secret []byte, nonce string) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(nonce))
	return nonce + "." + hex.EncodeToString(m.Sum(nil))
}

func validState(secret []byte, signed, got string) bool {
	nonce, _, found := strings.Cut(signed, ".")
	if !found || got != nonce {
		return false
	}
	return hmac.Equal([]byte(signed), []byte(signState(secret, nonce)))
}

// @Summary  Redirect to Google sign-in
// @Tags     accounts
// @Success  302
// @Failure  404 {object} httpx.HTTPError
// @Router   /google/login [get]
func googleLoginHandler(google *user.Google, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !google.Enabled() {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "google sign-in is not configured"})
			return
		}
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			httpx.Fail(c, err)
			return
		}
		nonce := hex.EncodeToString(buf)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookie, signState(secret, nonce), 600, "/", "", false, true)
		c.Redirect(http.StatusFound, google.AuthCodeURL(nonce))
	}
}

// @Summary  Google sign-in callback
// @Tags     accounts
// @Param    code  query string true "Authorization code"
// @Param    state query string true "State"
// @Success  302
// @Failure  400 {object} httpx.HTTPError
// @Failure  401 {object} httpx.HTTPError
// @Router   /google/login/callback [get]
func googleCallbackHandler(google *user.Google, secret []byte, users *user.Service, sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		signed, _ := c.Cookie(stateCookie)
		c.SetCookie(stateCookie, "", -1, "/", "", false, true)
		if !validState(secret, signed, c.Query("state")) {
			httpx.BadRequest(c, "invalid oauth state")
			return
		}
		profile, err := google.Exchange(c.Request.Context(), c.Query("code"))
		if err != nil {
			log.Printf("[http] rid=%s google sign-in: %v", httpx.RID(c), err)
			c.JSON(http.StatusUnauthorized, httpx.HTTPError{Error: "Google login failed"})
			return
		}
		u, err := users.SignInGoogle(c.Request.Context(), *profile)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !setSession(c, sessions, u) {
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}
