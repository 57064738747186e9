// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// passthrough repeats the incoming payload to the previous coffeebot
// deployment so its database keeps filling in case this one needs to
// be rolled back. Fire and forget; failures are logged and otherwise
// ignored. The form must already be parsed.
func (h *CoffeeHandler) passthrough(r *http.Request) {
	if h.cfg.PassthroughHost == "" {
		return
	}

	form := url.Values{}
	for k, vs := range r.PostForm {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	target := fmt.Sprintf("http://%s:%d%s", h.cfg.PassthroughHost, h.cfg.PassthroughPort, r.URL.Path)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	go func() {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		if err != nil {
			slog.Warn("failed to replay request", "error", err)
			return
		}
		resp.Body.Close()
	}()
}
