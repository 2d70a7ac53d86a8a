package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/threadline/storefront/internal/domain/auth"
)

type credentials struct {
	Username string
	Email    string
	Password string
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "username":
			v, err := d.Str()
			c.Username = v
			return err
		case "email":
			v, err := d.Str()
			c.Email = v
			return err
		case "password":
			v, err := d.Str()
			c.Password = v
			return err
		default:
			return d.Skip()
		}
	})
	return c, err
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.auth.Register(r.Context(), c.Username, c.Email, c.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "username and password required")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case err != nil:
		internalError(w, r, err)
	default:
		writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
			encodeUser(e, u)
		})
	}
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.auth.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("token")
		e.Str(token)
		e.FieldStart("user")
		encodeUser(e, u)
		e.ObjEnd()
	})
}

func encodeUser(e *jx.Encoder, u *auth.User) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(u.ID)
	e.FieldStart("username")
	e.Str(u.Username)
	e.FieldStart("email")
	e.Str(u.Email)
	e.FieldStart("admin")
	e.Bool(u.Admin)
	e.ObjEnd()
}
