// Package scraper sources authentication cookies for the extraction tool.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"vidgrab/internal/utils/logging"

	"github.com/browserutils/kooky"
	// Register all supported browsers for kooky.
	_ "github.com/browserutils/kooky/browser/all"

	"golang.org/x/net/publicsuffix"
)

// BootstrapCookieFile writes cookie text from the environment to path when
// no cookie file exists yet. Deployments on hosts without persistent disks
// inject their cookies this way.
func BootstrapCookieFile(content, path string) error {
	if content == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		logging.D(1, "Cookie file %q already exists, skipping env bootstrap", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing cookie file from environment: %w", err)
	}
	logging.I("Wrote cookie file to %q from environment", path)
	return nil
}

// ExportBrowserCookies reads the user's live browser cookies for the URL's
// base domain and writes them to cookieFilePath in Netscape format for the
// extraction tool.
func ExportBrowserCookies(ctx context.Context, rawURL, cookieFilePath string) error {
	domain, err := baseDomain(rawURL)
	if err != nil {
		return fmt.Errorf("extracting base domain for cookie export: %w", err)
	}

	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil {
		return fmt.Errorf("reading browser cookies for %q: %w", domain, err)
	}
	if len(kookyCookies) == 0 {
		logging.I("No browser cookies found for %s", domain)
		return nil
	}

	logging.I("Found %d browser cookies for %s", len(kookyCookies), domain)
	return writeNetscapeFile(toHTTPCookies(kookyCookies), domain, cookieFilePath)
}

func toHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		}
	}
	return httpCookies
}

// writeNetscapeFile writes cookies in the Netscape cookie file format.
func writeNetscapeFile(cookies []*http.Cookie, fallbackDomain, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.E("Failed to close cookie file %q: %v", path, err)
		}
	}()

	if _, err := f.WriteString("# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return err
	}

	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = fallbackDomain
		}
		includeSubdomains := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSubdomains = "TRUE"
		}
		cookiePath := c.Path
		if cookiePath == "" {
			cookiePath = "/"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		var expiry int64
		if !c.Expires.IsZero() {
			expiry = c.Expires.Unix()
		}

		line := strings.Join([]string{
			domain, includeSubdomains, cookiePath, secure,
			strconv.FormatInt(expiry, 10), c.Name, c.Value,
		}, "\t")
		if _, err := f.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	logging.S("Saved %d cookies to %q", len(cookies), path)
	return nil
}

// baseDomain resolves a URL to its effective-TLD+1 for cookie matching.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname in URL %q", rawURL)
	}
	return publicsuffix.EffectiveTLDPlusOne(host)
}
