package config

import (
	"testing"
)

func pin(n int) *int { return &n }

func TestValidate_GPIOValid(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			RedLED:   pin(17),
			GreenLED: pin(27),
			BlueLED:  pin(22),
			Buzzer:   pin(23),
		},
	}

	cfg.validate() // should not panic
}

func TestValidate_GPIO_Missing(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			RedLED:   pin(17),
			GreenLED: pin(27),
			BlueLED:  pin(22),
			// Buzzer missing
		},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to missing GPIO config, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_GPIO_Conflict(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			RedLED:   pin(17),
			GreenLED: pin(17), // Conflict
			BlueLED:  pin(22),
			Buzzer:   pin(23),
		},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to conflicting pin numbers, but got none")
		}
	}()

	cfg.validate()
}
