package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "auth-session"

func newSessionStore(sessionKey string) *sessions.CookieStore {
	if sessionKey == "" {
		sessionKey = "dev-session-key"
	}
	return sessions.NewCookieStore([]byte(sessionKey))
}

// currentUserID resolves the session email to an internal user ID.
// Returns 0 for anonymous sessions and for emails that no longer resolve.
func (ws *WebServer) currentUserID(c *gin.Context) uint {
	session, err := ws.store.Get(c.Request, sessionName)
	if err != nil {
		return 0
	}
	if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
		return 0
	}
	email, _ := session.Values["email"].(string)
	return ws.database.ResolveUserID(email)
}

// requireAuth guards the JSON API. Unauthenticated requests get 401.
func (ws *WebServer) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ws.currentUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// requirePageAuth guards HTML pages. Unauthenticated requests are redirected
// to the login page.
func (ws *WebServer) requirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ws.currentUserID(c)
		if userID == 0 {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func (ws *WebServer) signupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", nil)
}

func (ws *WebServer) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" || req.Password == "" {
		c.HTML(http.StatusBadRequest, "signup.html", gin.H{"Error": "Email and password are required"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "signup.html", gin.H{"Error": "Failed to process password"})
		return
	}

	if _, err := ws.database.CreateUser(req.Email, string(hashedPassword)); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.HTML(http.StatusConflict, "signup.html", gin.H{"Error": "Email already registered"})
			return
		}
		log.Printf("Warning: failed to create user %s: %v", req.Email, err)
		c.HTML(http.StatusInternalServerError, "signup.html", gin.H{"Error": "Failed to create account"})
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?registered=true")
}

func (ws *WebServer) loginPage(c *gin.Context) {
	data := gin.H{}
	if c.Query("registered") == "true" {
		data["Success"] = "Registration successful! Please log in."
	}
	c.HTML(http.StatusOK, "login.html", data)
}

func (ws *WebServer) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" || req.Password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "Email and password are required"})
		return
	}

	user, err := ws.database.GetUserByEmail(req.Email)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid email or password"})
		return
	}

	session, _ := ws.store.Get(c.Request, sessionName)
	session.Values["authenticated"] = true
	session.Values["email"] = user.Email
	if err := session.Save(c.Request, c.Writer); err != nil {
		log.Printf("Warning: failed to save session for %s: %v", user.Email, err)
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (ws *WebServer) logout(c *gin.Context) {
	session, _ := ws.store.Get(c.Request, sessionName)
	session.Values["authenticated"] = false
	delete(session.Values, "email")
	session.Save(c.Request, c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}
