package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
)

// JoinHandler renders the public landing page behind emailed join links.
// Joining itself happens in the app after sign-in; this page just shows
// where the code leads and hands the visitor over.
type JoinHandler struct {
	teamService    TeamServiceInterface
	contestService ContestServiceInterface
	frontendURL    string
}

func NewJoinHandler(teamService TeamServiceInterface, contestService ContestServiceInterface, frontendURL string) *JoinHandler {
	return &JoinHandler{
		teamService:    teamService,
		contestService: contestService,
		frontendURL:    frontendURL,
	}
}

func (h *JoinHandler) ViewJoinPage(c *drift.Context) {
	code := strings.ToUpper(c.Param("code"))
	if code == "" {
		h.renderError(c, "Invalid join link")
		return
	}

	ctx := context.Background()

	team, err := h.teamService.GetByCode(ctx, code)
	if err != nil {
		h.renderError(c, "Team not found. The link may have expired.")
		return
	}

	if team.IsLocked() {
		h.renderMessage(c, "This team has already started competing")
		return
	}

	contestTitle := "a contest"
	if contest, err := h.contestService.Get(ctx, team.ContestID); err == nil {
		if contest.HasEnded(time.Now()) {
			h.renderMessage(c, "This contest has already ended")
			return
		}
		contestTitle = contest.Title
	}

	h.renderJoinPage(c, team.Name, contestTitle, code)
}

func (h *JoinHandler) renderJoinPage(c *drift.Context, teamName, contestTitle, code string) {
	appLink := fmt.Sprintf("%s?join=%s", h.frontendURL, url.QueryEscape(code))

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Join Team</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #333; }
        p { color: #666; margin: 20px 0; }
        .team-name { font-weight: bold; color: #333; }
        .code { font-family: monospace; font-size: 24px; letter-spacing: 4px; background: #f3f4f6; border: 1px solid #e5e7eb; border-radius: 6px; padding: 12px; margin: 20px 0; }
        a.join { display: inline-block; padding: 12px 24px; font-size: 16px; border-radius: 6px; background: #22c55e; color: white; text-decoration: none; }
        a.join:hover { background: #16a34a; }
        .hint { font-size: 13px; color: #9ca3af; }
    </style>
</head>
<body>
    <h1>Join Team</h1>
    <p>You've been invited to join <span class="team-name">%s</span> for <span class="team-name">%s</span></p>
    <div class="code">%s</div>
    <a class="join" href="%s">Open CodeClash to join</a>
    <p class="hint">Or enter the code above in the app yourself.</p>
</body>
</html>`, teamName, contestTitle, code, appLink)

	_ = c.HTML(200, html)
}

func (h *JoinHandler) renderMessage(c *drift.Context, message string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Join Team</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #22c55e; }
        p { color: #666; }
    </style>
</head>
<body>
    <h1>%s</h1>
</body>
</html>`, message)

	_ = c.HTML(200, html)
}

func (h *JoinHandler) renderError(c *drift.Context, message string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Error</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #ef4444; }
        p { color: #666; }
    </style>
</head>
<body>
    <h1>Error</h1>
    <p>%s</p>
</body>
</html>`, message)

	_ = c.HTML(400, html)
}
