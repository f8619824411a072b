package credentials

import "fmt"

// Credentials is the ephemeral in-memory record a probe authenticates with.
// Its default string form never reveals a secret field, satisfying the
// credential non-disclosure property.
type Credentials struct {
	Username   string
	Password   Secret
	PrivateKey Secret
	Passphrase Secret
}

// NewPasswordCredentials builds a password-authenticated Credentials.
func NewPasswordCredentials(username, password string) Credentials {
	return Credentials{Username: username, Password: NewSecret(password)}
}

// NewKeyCredentials builds a key-authenticated Credentials, with an optional
// passphrase.
func NewKeyCredentials(username, privateKey, passphrase string) Credentials {
	return Credentials{
		Username:   username,
		PrivateKey: NewSecret(privateKey),
		Passphrase: NewSecret(passphrase),
	}
}

// String yields the fixed redacted form: no secret field value can appear
// verbatim.
func (c Credentials) String() string {
	return fmt.Sprintf("user=%s, password=%s, key=%s", c.Username, redactedForm, redactedForm)
}

func (c Credentials) GoString() string { return c.String() }

// UsesKey reports whether this credential set authenticates via private key
// rather than password.
func (c Credentials) UsesKey() bool {
	return !c.PrivateKey.IsEmpty()
}

// Clear overwrites and releases every secret field. It must be called on
// every exit path of a probe that holds these credentials, including
// failure paths.
func (c *Credentials) Clear() {
	c.Password.Clear()
	c.PrivateKey.Clear()
	c.Passphrase.Clear()
}
