package models

// ValidSAID reports whether id is a 13 digit South African identity number
// with a correct Luhn check digit
func ValidSAID(id string) bool {
	if len(id) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
