// Package cookie reads and writes HTTP cookies with optional signing and encryption.
//
// Plain cookies work without a secret. Signed cookies (HMAC-SHA256 bound to the
// cookie name) and flash values (AES-GCM, read once) need a secret of at least
// [MinSecretLength] bytes; without one they return [ErrNoSecret].
//
//	m := cookie.NewFromConfig(cfg.Cookie)
//
//	_ = m.SetSigned(w, "__sid", token, 86400)
//	token, err := m.GetSigned(r, "__sid")
//
//	_ = m.SetFlash(w, "status", "Draft saved")
//	var msg string
//	err = m.Flash(w, r, "status", &msg)
package cookie
