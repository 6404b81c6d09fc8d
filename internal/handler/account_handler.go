package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/dropss/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type signUpForm struct {
	Email          string `form:"email" binding:"required,email"`
	Username       string `form:"username" binding:"required,username"`
	Password       string `form:"password" binding:"required,min=6"`
	RepeatPassword string `form:"repeat_password" binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ShowHome 渲染落地页
func (a *API) ShowHome(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":       a.siteName,
		"description": "Your links, music and presence on one page.",
	})
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if _, ok := currentUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in - " + a.siteName,
	})
}

// Login 处理登录表单
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderLoginError(c, http.StatusBadRequest, form.Email, "Email and password are required")
		return
	}

	user, err := a.accounts.Authenticate(form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.renderLoginError(c, http.StatusUnauthorized, form.Email, "Invalid email or password")
			return
		}
		log.Printf("[auth] login failed: %v", err)
		a.renderLoginError(c, http.StatusInternalServerError, form.Email, "Login failed, please try again")
		return
	}

	if err := startSession(c, user.ID); err != nil {
		a.renderLoginError(c, http.StatusInternalServerError, form.Email, "Could not save session")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *API) renderLoginError(c *gin.Context, status int, email, message string) {
	a.renderHTML(c, status, "login.html", gin.H{
		"title": "Log in - " + a.siteName,
		"email": email,
		"error": message,
	})
}

// ShowSignUpPage 渲染注册页面
func (a *API) ShowSignUpPage(c *gin.Context) {
	if _, ok := currentUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "sign_up.html", gin.H{
		"title": "Sign up - " + a.siteName,
	})
}

// SignUp 创建账号与个人主页并直接登录
func (a *API) SignUp(c *gin.Context) {
	var form signUpForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderSignUpError(c, http.StatusBadRequest, form, signUpBindingMessage(err))
		return
	}

	user, _, err := a.accounts.SignUp(service.SignUpInput{
		Email:          form.Email,
		Username:       form.Username,
		Password:       form.Password,
		RepeatPassword: form.RepeatPassword,
	})
	if err != nil {
		status, message := signUpErrorMessage(err)
		if status == http.StatusInternalServerError {
			log.Printf("[auth] sign up failed: %v", err)
		}
		a.renderSignUpError(c, status, form, message)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *API) renderSignUpError(c *gin.Context, status int, form signUpForm, message string) {
	a.renderHTML(c, status, "sign_up.html", gin.H{
		"title":    "Sign up - " + a.siteName,
		"email":    form.Email,
		"username": form.Username,
		"error":    message,
	})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("[auth] clear session failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/auth/login")
}

func startSession(c *gin.Context, userID string) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserKey, userID)
	return session.Save()
}

func signUpBindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please fill in every field"
	}
	switch verrs[0].Field() {
	case "Email":
		return "Please enter a valid email"
	case "Username":
		if name, _ := verrs[0].Value().(string); service.IsReservedUsername(name) {
			return "This username is reserved"
		}
		return "Username must be 3-20 characters of letters, numbers, hyphens or underscores"
	case "Password":
		return "Password must be at least 6 characters"
	case "RepeatPassword":
		return "Passwords do not match"
	}
	return "Please fill in every field"
}

func signUpErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "Please enter a valid email"
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "Password must be at least 6 characters"
	case errors.Is(err, service.ErrReservedUsername):
		return http.StatusBadRequest, "This username is reserved"
	case errors.Is(err, service.ErrInvalidUsername):
		return http.StatusBadRequest, "Username must be 3-20 characters of letters, numbers, hyphens or underscores"
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "This username is already taken"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "An account with this email already exists"
	}
	return http.StatusInternalServerError, "Sign up failed, please try again"
}
