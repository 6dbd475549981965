// Package remote holds the HTTP clients for the authentication surfaces of
// the remote service: the challenge exchange and credential management.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
	"github.com/allisson/stepup/internal/remote"
)

// ChallengeClient implements usecase.ChallengeAPI over the remote HTTP
// service. The challenge exchange itself is never signed: it is the
// bootstrap that produces the proof other calls attach.
type ChallengeClient struct {
	client *remote.Client
}

// NewChallengeClient creates the challenge exchange client.
func NewChallengeClient(client *remote.Client) *ChallengeClient {
	return &ChallengeClient{client: client}
}

type createChallengeRequest struct {
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	PayloadHash string          `json:"payloadHash"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type wireRelyingParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireSupportedKind struct {
	Factor               string `json:"factor"`
	Kind                 string `json:"kind"`
	RequiresSecondFactor bool   `json:"requiresSecondFactor"`
}

type wireAllowedCredential struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type createChallengeResponse struct {
	ChallengeIdentifier      string                  `json:"challengeIdentifier"`
	Challenge                string                  `json:"challenge"`
	RelyingParty             *wireRelyingParty       `json:"rp,omitempty"`
	SupportedCredentialKinds []wireSupportedKind     `json:"supportedCredentialKinds"`
	AllowCredentials         []wireAllowedCredential `json:"allowCredentials,omitempty"`
	ExpiresAt                time.Time               `json:"expiresAt"`
}

// CreateUserActionChallenge requests a single-use challenge scoped to the
// action's fingerprint.
func (a *ChallengeClient) CreateUserActionChallenge(
	ctx context.Context,
	action *authDomain.UserAction,
) (*authDomain.Challenge, error) {
	fingerprint, err := action.Fingerprint()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(createChallengeRequest{
		Method:      fingerprint.Method,
		Path:        fingerprint.Path,
		PayloadHash: fingerprint.PayloadHash,
		Payload:     normalizeJSONPayload(action.Payload),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal challenge request")
	}

	var resp createChallengeResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/action/init", payload, nil, &resp); err != nil {
		return nil, err
	}
	return challengeFromWire(&resp), nil
}

type wireKeyAssertion struct {
	CredentialID string `json:"credId"`
	ClientData   string `json:"clientData"`
	Signature    string `json:"signature"`
}

type wireWebAuthnAssertion struct {
	CredentialID      string `json:"credId"`
	AuthenticatorData string `json:"authenticatorData"`
	ClientDataJSON    string `json:"clientDataJson"`
	Signature         string `json:"signature"`
	UserHandle        string `json:"userHandle,omitempty"`
}

type wireAssertion struct {
	Kind                string                 `json:"kind"`
	CredentialAssertion *wireKeyAssertion      `json:"credentialAssertion,omitempty"`
	WebAuthnAssertion   *wireWebAuthnAssertion `json:"webauthnAssertion,omitempty"`
	Password            string                 `json:"password,omitempty"`
	OTPCode             string                 `json:"otpCode,omitempty"`
}

type createSignatureRequest struct {
	ChallengeIdentifier string         `json:"challengeIdentifier"`
	FirstFactor         wireAssertion  `json:"firstFactor"`
	SecondFactor        *wireAssertion `json:"secondFactor,omitempty"`
}

type createSignatureResponse struct {
	UserAction string `json:"userAction"`
}

// CreateUserActionSignature submits the assertions for verification and
// returns the issued user action token value.
func (a *ChallengeClient) CreateUserActionSignature(
	ctx context.Context,
	challengeID string,
	firstFactor authDomain.Assertion,
	secondFactor *authDomain.Assertion,
) (string, error) {
	request := createSignatureRequest{
		ChallengeIdentifier: challengeID,
		FirstFactor:         assertionToWire(firstFactor),
	}
	if secondFactor != nil {
		second := assertionToWire(*secondFactor)
		request.SecondFactor = &second
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", apperrors.Wrap(err, "marshal signature request")
	}

	var resp createSignatureResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/action", payload, nil, &resp); err != nil {
		return "", err
	}
	if resp.UserAction == "" {
		return "", apperrors.Wrap(apperrors.ErrUnavailable, "verification response carried no token")
	}
	return resp.UserAction, nil
}

// normalizeJSONPayload passes JSON payloads through verbatim and wraps
// anything else (or an empty body) as null so the request stays valid JSON.
func normalizeJSONPayload(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	return nil
}

func challengeFromWire(resp *createChallengeResponse) *authDomain.Challenge {
	challenge := &authDomain.Challenge{
		Identifier: resp.ChallengeIdentifier,
		Payload:    resp.Challenge,
		ExpiresAt:  resp.ExpiresAt,
	}
	if resp.RelyingParty != nil {
		challenge.RelyingParty = &authDomain.RelyingParty{
			ID:   resp.RelyingParty.ID,
			Name: resp.RelyingParty.Name,
		}
	}
	for _, s := range resp.SupportedCredentialKinds {
		challenge.SupportedKinds = append(challenge.SupportedKinds, authDomain.SupportedKind{
			Factor:               authDomain.Factor(s.Factor),
			Kind:                 authDomain.CredentialKind(s.Kind),
			RequiresSecondFactor: s.RequiresSecondFactor,
		})
	}
	for _, c := range resp.AllowCredentials {
		challenge.AllowedCredentials = append(challenge.AllowedCredentials, authDomain.AllowedCredential{
			ID:   c.ID,
			Kind: authDomain.CredentialKind(c.Kind),
		})
	}
	return challenge
}

func assertionToWire(assertion authDomain.Assertion) wireAssertion {
	wire := wireAssertion{Kind: string(assertion.Kind)}
	switch {
	case assertion.Key != nil:
		wire.CredentialAssertion = &wireKeyAssertion{
			CredentialID: assertion.Key.CredentialID,
			ClientData:   assertion.Key.ClientData,
			Signature:    assertion.Key.Signature,
		}
	case assertion.WebAuthn != nil:
		wire.WebAuthnAssertion = &wireWebAuthnAssertion{
			CredentialID:      assertion.WebAuthn.CredentialID,
			AuthenticatorData: assertion.WebAuthn.AuthenticatorData,
			ClientDataJSON:    assertion.WebAuthn.ClientDataJSON,
			Signature:         assertion.WebAuthn.Signature,
			UserHandle:        assertion.WebAuthn.UserHandle,
		}
	case assertion.Password != "":
		wire.Password = assertion.Password
	case assertion.OTPCode != "":
		wire.OTPCode = assertion.OTPCode
	}
	return wire
}
