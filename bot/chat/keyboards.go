package chat

import "fmt"

// Callback data vocabulary:
//   device:<brand>   brand picked on the greeting keyboard ("other" = free text)
//   brand:<brand>    legacy prefix from older keyboards, still routed
//   model:<model>    popular model shortcut ("custom" = free text)
//   problem:<slug>   repair category ("custom" = free text)

// carBrandKeyboard is the greeting entry point. The "device:" prefix is
// kept from the days the first question was about device categories.
func carBrandKeyboard() [][]MenuOption {
	return [][]MenuOption{
		{{Label: "Toyota", Data: "device:Toyota"}, {Label: "BMW", Data: "device:BMW"}},
		{{Label: "Mercedes", Data: "device:Mercedes"}, {Label: "Hyundai", Data: "device:Hyundai"}},
		{{Label: "Kia", Data: "device:Kia"}, {Label: "Volkswagen", Data: "device:Volkswagen"}},
		{{Label: "Lada / ВАЗ", Data: "device:Lada"}, {Label: "Другая марка", Data: "device:other"}},
	}
}

// brandModelKeyboards maps a known brand to its popular-model shortcuts.
var brandModelKeyboards = map[string][][]MenuOption{
	"Toyota": {
		{{Label: "Camry", Data: "model:Camry"}, {Label: "Corolla", Data: "model:Corolla"}},
		{{Label: "RAV4", Data: "model:RAV4"}, {Label: "Land Cruiser", Data: "model:Land Cruiser"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"BMW": {
		{{Label: "3 серия", Data: "model:BMW 3 Series"}, {Label: "5 серия", Data: "model:BMW 5 Series"}},
		{{Label: "X5", Data: "model:X5"}, {Label: "X3", Data: "model:X3"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"Mercedes": {
		{{Label: "C-класс", Data: "model:C-Class"}, {Label: "E-класс", Data: "model:E-Class"}},
		{{Label: "GLE", Data: "model:GLE"}, {Label: "S-класс", Data: "model:S-Class"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"Hyundai": {
		{{Label: "Solaris", Data: "model:Solaris"}, {Label: "Tucson", Data: "model:Tucson"}},
		{{Label: "Creta", Data: "model:Creta"}, {Label: "Elantra", Data: "model:Elantra"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"Kia": {
		{{Label: "Rio", Data: "model:Rio"}, {Label: "Sportage", Data: "model:Sportage"}},
		{{Label: "Cerato", Data: "model:Cerato"}, {Label: "Sorento", Data: "model:Sorento"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"Volkswagen": {
		{{Label: "Polo", Data: "model:Polo"}, {Label: "Tiguan", Data: "model:Tiguan"}},
		{{Label: "Passat", Data: "model:Passat"}, {Label: "Golf", Data: "model:Golf"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
	"Lada": {
		{{Label: "Vesta", Data: "model:Vesta"}, {Label: "Granta", Data: "model:Granta"}},
		{{Label: "XRAY", Data: "model:XRAY"}, {Label: "Niva", Data: "model:Niva"}},
		{{Label: "Другая модель — напишу сам", Data: "model:custom"}},
	},
}

func problemKeyboard() [][]MenuOption {
	return [][]MenuOption{
		{{Label: "Двигатель", Data: "problem:engine_repair"}, {Label: "Тормоза", Data: "problem:brake_repair"}},
		{{Label: "Замена масла / ТО", Data: "problem:oil_change"}, {Label: "Подвеска", Data: "problem:suspension_repair"}},
		{{Label: "Диагностика", Data: "problem:diagnostics"}, {Label: "Электрика", Data: "problem:electrical"}},
		{{Label: "Кузов / покраска", Data: "problem:bodywork"}, {Label: "Кондиционер", Data: "problem:ac_repair"}},
		{{Label: "Коробка передач", Data: "problem:transmission"}, {Label: "Шины / колёса", Data: "problem:tire_service"}},
		{{Label: "Другое — опишу", Data: "problem:custom"}},
	}
}

// Human-readable labels persisted to the transcript when a button is
// pressed, so the admin panel shows choices instead of raw tokens.
var callbackLabels = map[string]map[string]string{
	"device": {
		"Toyota":     "Toyota",
		"BMW":        "BMW",
		"Mercedes":   "Mercedes",
		"Hyundai":    "Hyundai",
		"Kia":        "Kia",
		"Volkswagen": "Volkswagen",
		"Lada":       "Lada / ВАЗ",
		"other":      "Другая марка",
	},
	"problem": {
		"engine_repair":     "Двигатель",
		"brake_repair":      "Тормоза",
		"oil_change":        "Замена масла / ТО",
		"suspension_repair": "Подвеска",
		"diagnostics":       "Диагностика",
		"bodywork":          "Кузов / покраска",
		"electrical":        "Электрика",
		"ac_repair":         "Кондиционер",
		"transmission":      "Коробка передач",
		"tire_service":      "Шины / колёса",
		"custom":            "Другое",
		"other":             "Другое",
	},
}

// callbackLabel converts "problem:engine_repair" into "[Выбрано: Двигатель]".
func callbackLabel(prefix, value string) string {
	label := value
	if labels, ok := callbackLabels[prefix]; ok {
		if l, ok := labels[value]; ok {
			label = l
		}
	}
	return fmt.Sprintf("[Выбрано: %s]", label)
}
