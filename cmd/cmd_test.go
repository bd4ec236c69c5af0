package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/gymbook/internal/config"
	"github.com/example/gymbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarHTML = `<html><body><div id="divCalendario"><ul>
<li><span class="active">9</span></li>
<li><span class="active">11</span></li>
<li><span>12</span></li>
<li><span class="active">15</span></li>
</ul></div></body></html>`

const timetableHTML = `<html><body><div id="md_modal_horas"><table><tbody>
<tr><td>[ 07:00 - 08:00 ]</td><td><button>Reservar</button></td></tr>
<tr><td>[ 08:00 - 09:00 ]</td><td><button>Reservar</button></td></tr>
</tbody></table></div></body></html>`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInspect(t *testing.T) {
	t.Setenv("TARGET_TIME_RANGE", "")
	dir := t.TempDir()
	cal := writeFile(t, dir, "calendar.html", calendarHTML)
	tt := writeFile(t, dir, "timetable.html", timetableHTML)

	out, err := execute(t, "inspect", "--calendar", cal, "--today", "10")
	require.NoError(t, err)
	assert.Equal(t, "today 10: 3 active days, 2 eligible\nday 11\nday 15\n", out)

	out, err = execute(t, "inspect", "--calendar", cal, "--timetable", tt, "--today", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "day 11\twould book [ 08:00 - 09:00 ]\n")
	assert.Contains(t, out, "day 15\twould book [ 08:00 - 09:00 ]\n")

	out, err = execute(t, "inspect", "--calendar", cal, "--timetable", tt, "--today", "10", "--target", "[ 20:00 - 21:00 ]")
	require.NoError(t, err)
	assert.Contains(t, out, "day 11\t[ 20:00 - 21:00 ] not offered\n")
}

func TestInspectTodayFollowsTimezone(t *testing.T) {
	t.Setenv("TARGET_TIME_RANGE", "")
	t.Setenv("TIMEZONE", "")
	cal := writeFile(t, t.TempDir(), "calendar.html", calendarHTML)

	// 23:30 UTC on the 10th is already the 11th in Tokyo
	orig := clock
	clock = func() time.Time { return time.Date(2024, time.May, 10, 23, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { clock = orig })

	out, err := execute(t, "inspect", "--calendar", cal, "--timezone", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "today 10: 3 active days, 2 eligible\nday 11\nday 15\n", out)

	out, err = execute(t, "inspect", "--calendar", cal, "--timezone", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "today 11: 3 active days, 1 eligible\nday 15\n", out)

	t.Setenv("TIMEZONE", "Asia/Tokyo")
	out, err = execute(t, "inspect", "--calendar", cal)
	require.NoError(t, err)
	assert.Contains(t, out, "today 11:")

	_, err = execute(t, "inspect", "--calendar", cal, "--timezone", "Mars/Olympus")
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestInspectRequiresCalendar(t *testing.T) {
	_, err := execute(t, "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar")

	_, err = execute(t, "inspect", "--calendar", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestRunFailsFastWithoutConfig(t *testing.T) {
	for _, k := range []string{"GYM_WEB", "GYM_BOOKING", "GYM_USERNAME", "GYM_PASSWORD"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GYM_WEB is required")
}

func TestDriverOptionsFromConfig(t *testing.T) {
	cfg := config.Config{
		Headless:          false,
		ChromePath:        "/opt/chromium/chrome",
		WaitTimeout:       45 * time.Second,
		PlaywrightInstall: true,
	}

	pw := playwrightOptions(cfg)
	assert.True(t, pw.Install)
	assert.False(t, pw.Headless)
	assert.Equal(t, "/opt/chromium/chrome", pw.ExecPath)
	assert.Equal(t, 45*time.Second, pw.IdleTimeout)

	logger := logging.Discard()
	ch := chromeOptions(cfg, logger)
	assert.Equal(t, "/opt/chromium/chrome", ch.ExecPath)
	assert.Equal(t, 45*time.Second, ch.IdleTimeout)
	assert.Same(t, logger, ch.Logger)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gymbook dev (commit=none, built=unknown)\n", out)
}
