// Package site holds the CSS selectors of the gym booking web application.
package site

// Selectors locates every element the booking flow touches.
type Selectors struct {
	UsernameField string
	PasswordField string
	LoginButton   string

	ServicesCombobox string
	Calendar         string
	ActiveDay        string
	DayButton        string

	TimetableModal string
	Rows           string
	FirstColumn    string
	RowButton      string

	ConfirmModal  string
	AcceptButton  string
	ErrorMessage  string
	DismissButton string
	CloseButton   string
}

// Default returns the selectors of the production site.
func Default() Selectors {
	return Selectors{
		UsernameField: "#txt_usuario",
		PasswordField: "#txt_clave",
		LoginButton:   ".btn",

		ServicesCombobox: "select#cmb_servicio",
		Calendar:         "#divCalendario",
		ActiveDay:        "li:has(span.active)",
		DayButton:        "span",

		TimetableModal: "#md_modal_horas",
		Rows:           "table > tbody > tr",
		FirstColumn:    "td:first-child",
		RowButton:      "button",

		ConfirmModal:  "#md_modal_confirmar",
		AcceptButton:  "#md_modal_confirmar_btn_aceptar",
		ErrorMessage:  "label#md_modal_confirmar_lbl_mensaje.error",
		DismissButton: `button.btn.btn-outline-secondary[title="Cancelar"]`,
		CloseButton:   "#md_modal_mensaje_cerrar",
	}
}

const (
	// TrainingGroundServiceID is the services combobox option for the training ground.
	TrainingGroundServiceID = "37"
	// BookingAlreadyExists is the prefix of the error shown when the slot is already taken by this user.
	BookingAlreadyExists = "Ya existe una reserva"
	// DefaultTargetTimeRange is the hour range booked when none is configured.
	DefaultTargetTimeRange = "[ 08:00 - 09:00 ]"
)
