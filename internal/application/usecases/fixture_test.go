package usecases

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/infrastructure/snapshot"
	"github.com/example/gymbook/internal/site"
	"github.com/stretchr/testify/require"
)

const (
	loginURL   = "https://gym.example/login"
	bookingURL = "https://gym.example/reservas"
)

const loginHTML = `<html><body>
<form>
  <input id="txt_usuario"><input id="txt_clave" type="password">
  <button id="btn_ingresar" class="btn" type="button">Ingresar</button>
</form>
</body></html>`

// gymSite serves a login page and a booking page whose modals react to clicks.
type gymSite struct {
	// days in calendar order; a leading "-" marks an inactive cell
	days []string
	// time table rows per day label
	tables map[string][]string
	// confirmation text per day label
	messages map[string]string

	stuckTimetable string
	stuckConfirm   bool
	noMessageLabel bool
	hiddenButtons  bool

	opened string
}

func (g *gymSite) bookingHTML() string {
	var cal strings.Builder
	for _, d := range g.days {
		if strings.HasPrefix(d, "-") {
			fmt.Fprintf(&cal, "<li><span>%s</span></li>\n", strings.TrimPrefix(d, "-"))
			continue
		}
		fmt.Fprintf(&cal, "<li><span class=\"active\">%s</span></li>\n", d)
	}
	label := `<label id="md_modal_confirmar_lbl_mensaje" class="error"></label>`
	if g.noMessageLabel {
		label = ""
	}
	return `<html><body>
<select id="cmb_servicio"><option value="1" selected>Piscina</option><option value="37">Sala de entrenamiento</option></select>
<div id="divCalendario"><ul>` + cal.String() + `</ul></div>
<div id="md_modal_horas" style="display: none"></div>
<div id="md_modal_confirmar" style="display: none">
  ` + label + `
  <button id="md_modal_confirmar_btn_aceptar">Aceptar</button>
  <button class="btn btn-outline-secondary" title="Cancelar">Cancelar</button>
  <button id="md_modal_mensaje_cerrar">Cerrar</button>
</div>
</body></html>`
}

func (g *gymSite) page(t *testing.T) *snapshot.Page {
	t.Helper()
	p, err := snapshot.FromHTML("<html><body></body></html>")
	require.NoError(t, err)
	p.Route(loginURL, loginHTML)
	p.Route(bookingURL, g.bookingHTML())

	p.OnClick("#divCalendario li span", func(s *goquery.Selection) error {
		day := strings.TrimSpace(s.Text())
		g.opened = day
		modal := p.Document().Find("#md_modal_horas")
		if day == g.stuckTimetable {
			modal.SetAttr("style", "display: none")
			return nil
		}
		style := ""
		if g.hiddenButtons {
			style = ` style="display: none"`
		}
		var rows strings.Builder
		for i, r := range g.tables[day] {
			fmt.Fprintf(&rows, `<tr><td>%s</td><td><button id="req-%s-%d"%s>Reservar</button></td></tr>`, r, day, i, style)
		}
		modal.SetHtml("<table><tbody>" + rows.String() + "</tbody></table>")
		modal.RemoveAttr("style")
		return nil
	})
	p.OnClick("#md_modal_horas button", func(*goquery.Selection) error {
		p.Document().Find("#md_modal_confirmar").RemoveAttr("style")
		return nil
	})
	p.OnClick("#md_modal_confirmar_btn_aceptar", func(*goquery.Selection) error {
		p.Document().Find("#md_modal_confirmar_lbl_mensaje").SetText(g.messages[g.opened])
		return nil
	})
	closeDialog := func(*goquery.Selection) error {
		if !g.stuckConfirm {
			p.Document().Find("#md_modal_confirmar").SetAttr("style", "display: none")
		}
		return nil
	}
	p.OnClick(`button[title="Cancelar"]`, closeDialog)
	p.OnClick("#md_modal_mensaje_cerrar", closeDialog)
	return p
}

func testSettings() Settings {
	return Settings{
		LoginURL:         loginURL,
		BookingURL:       bookingURL,
		Username:         "socio",
		Password:         "secreto",
		ServiceID:        site.TrainingGroundServiceID,
		Target:           site.DefaultTargetTimeRange,
		Classifier:       booking.Classifier{ConflictMessage: site.BookingAlreadyExists},
		Location:         time.UTC,
		WaitTimeout:      time.Second,
		TimetableTimeout: time.Second,
		Selectors:        site.Default(),
	}
}

func fixedNow(day int) func() time.Time {
	return func() time.Time { return time.Date(2024, time.May, day, 7, 30, 0, 0, time.UTC) }
}

// standardSite has days 5, 12, 20 (inactive), 14 and 25 with today being the 10th.
func standardSite() *gymSite {
	return &gymSite{
		days: []string{"5", "12", "-20", "14", "25"},
		tables: map[string][]string{
			"5":  {"[ 08:00 - 09:00 ]"},
			"12": {"[ 07:00 - 08:00 ]", "[ 08:00 - 09:00 ]", "[ 09:00 - 10:00 ]"},
			"14": {"[ 08:00 - 09:00 ]"},
			"25": {"[ 18:00 - 19:00 ]", "[ 19:00 - 20:00 ]"},
		},
		messages: map[string]string{
			"12": "",
			"14": "Ya existe una reserva para este horario",
		},
	}
}
