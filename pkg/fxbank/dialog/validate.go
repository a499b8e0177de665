package dialog

import (
	"fmt"
	"strconv"
	"strings"

	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
)

// ParseDecimal принимает точку и запятую как десятичный разделитель,
// разделители тысяч (пробелы, апострофы, группы точек при десятичной запятой)
// вычищаются: "1 000,50", "1'000.50" и "1.000,50" дают одно и то же.
func ParseDecimal(input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer(" ", "", " ", "", "'", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("пустое значение")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case hasDot:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("не число: %v", input)
	}
	return value, nil
}

// ValidCurrency нормализует код валюты: 3-4 латинские буквы, верхний регистр.
func ValidCurrency(input string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(input))
	if len(code) < 3 || len(code) > 4 {
		return "", fmt.Errorf("код валюты должен быть из 3-4 букв")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("код валюты должен быть из латинских букв")
		}
	}
	return code, nil
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func parseOperation(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "buy", "купить", "покупка":
		return orderPkg.OpBuy, nil
	case "sell", "продать", "продажа":
		return orderPkg.OpSell, nil
	case "convert", "конвертация", "конвертировать":
		return orderPkg.OpConvert, nil
	}
	return "", fmt.Errorf("неизвестная операция: %v", input)
}
