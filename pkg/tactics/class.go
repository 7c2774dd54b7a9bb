package tactics

import (
	"fmt"
	"strings"
)

// Class is a hull classification. Values are ordered by tier: a larger
// value is a bigger, more important ship.
type Class int

const (
	ClassUnknown Class = iota
	ClassDrone
	ClassFighter
	ClassCorvette
	ClassFrigate
	ClassDestroyer
	ClassCruiser
	ClassBattleship
	ClassCarrier
	ClassFlagship
)

var classNames = [...]string{
	ClassUnknown:    "Unknown",
	ClassDrone:      "Drone",
	ClassFighter:    "Fighter",
	ClassCorvette:   "Corvette",
	ClassFrigate:    "Frigate",
	ClassDestroyer:  "Destroyer",
	ClassCruiser:    "Cruiser",
	ClassBattleship: "Battleship",
	ClassCarrier:    "Carrier",
	ClassFlagship:   "Flagship",
}

// AllClasses returns every known classification in tier order.
func AllClasses() []Class {
	return []Class{
		ClassDrone, ClassFighter, ClassCorvette, ClassFrigate, ClassDestroyer,
		ClassCruiser, ClassBattleship, ClassCarrier, ClassFlagship,
	}
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return classNames[ClassUnknown]
	}
	return classNames[c]
}

// key is the lookup key used by the tuning tables.
func (c Class) key() string { return strings.ToLower(c.String()) }

// IsLightHull reports whether c is a light or medium hull (frigate and below).
func (c Class) IsLightHull() bool {
	return c > ClassUnknown && c <= ClassFrigate
}

// ParseClass resolves a classification name case-insensitively.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	for i, name := range classNames {
		if i == int(ClassUnknown) {
			continue
		}
		if strings.EqualFold(name, s) {
			return Class(i), nil
		}
	}
	return ClassUnknown, fmt.Errorf("unknown class %q", s)
}

func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts any class name. An empty string or "Unknown" decodes
// to ClassUnknown, which disables class-valued tunables.
func (c *Class) UnmarshalText(b []byte) error {
	name := strings.TrimSpace(string(b))
	if name == "" || strings.EqualFold(name, classNames[ClassUnknown]) {
		*c = ClassUnknown
		return nil
	}
	parsed, err := ParseClass(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
