package bedrock

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

const signingService = "bedrock"

// signer produces AWS Signature Version 4 request signatures from the
// connector's credential bundle. The credential values go into the HMAC
// chain only; they are never written to headers, errors, or logs.
type signer struct {
	creds chatconnect.Credentials
}

func newSigner(creds chatconnect.Credentials) *signer {
	return &signer{creds: creds}
}

// sign computes the SigV4 signature over the request and payload at the
// given instant and sets the X-Amz-Date, X-Amz-Content-Sha256, and
// Authorization headers. The instant is a parameter so tests can pin it.
func (s *signer) sign(req *http.Request, payload []byte, now time.Time) error {
	if !s.creds.IsComplete() {
		return chatconnect.ErrNotConfigured
	}

	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")
	payloadHash := hexSHA256(payload)

	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	signedHeaders := "host;x-amz-content-sha256;x-amz-date"
	canonicalHeaders := strings.Join([]string{
		"host:" + req.URL.Host,
		"x-amz-content-sha256:" + payloadHash,
		"x-amz-date:" + amzDate,
	}, "\n") + "\n"

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.EscapedPath(),
		req.URL.RawQuery,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, s.creds.Region, signingService, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signature := hex.EncodeToString(hmacSHA256(s.signingKey(dateStamp), stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.creds.AccessKey, scope, signedHeaders, signature,
	))

	return nil
}

// signingKey derives the per-day signing key from the secret key.
func (s *signer) signingKey(dateStamp string) []byte {
	key := hmacSHA256([]byte("AWS4"+s.creds.SecretKey), dateStamp)
	key = hmacSHA256(key, s.creds.Region)
	key = hmacSHA256(key, signingService)
	return hmacSHA256(key, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
