package chrome

import (
	"encoding/json"
	"fmt"
)

func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", s, err)
	}
	return string(b), nil
}

// selectScript evaluates to false when selector matches nothing.
func selectScript(selector, value string) (string, error) {
	sel, err := jsString(selector)
	if err != nil {
		return "", err
	}
	val, err := jsString(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(function(selector, value) {
	const el = document.querySelector(selector);
	if (!el) return false;
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%s, %s)`, sel, val), nil
}

func hiddenScript(selector string) (string, error) {
	sel, err := jsString(selector)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(function(selector) {
	const el = document.querySelector(selector);
	if (!el) return true;
	const style = window.getComputedStyle(el);
	return style.display === 'none' || style.visibility === 'hidden' || el.offsetHeight === 0;
})(%s)`, sel), nil
}
