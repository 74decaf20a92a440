package catalog

import (
	"strings"

	"artassist/internal/models"
)

// Category labels used by the built-in ideas.
const (
	CategoryPainting    = "Живопись"
	CategoryPhotography = "Фотография"
	CategorySculpture   = "Скульптура"
	CategoryDigital     = "Цифровое искусство"
	CategoryCalligraphy = "Каллиграфия"
)

var ideas = []models.Idea{
	{
		ID:          "1",
		Title:       "Абстрактный портрет эмоций",
		Description: "Создайте портрет, где черты лица переплетаются с цветовыми пятнами, отражающими внутренние переживания",
		Category:    CategoryPainting,
		Difficulty:  models.DifficultyMedium,
		Materials:   []string{"Акриловые краски", "Холст", "Кисти разных размеров"},
		Inspiration: "Работы Василия Кандинского и Френсиса Бэкона",
	},
	{
		ID:          "2",
		Title:       "Городской пейзаж в дождь",
		Description: "Зафиксируйте отражения неонового света на мокром асфальте в вечернем городе",
		Category:    CategoryPhotography,
		Difficulty:  models.DifficultyEasy,
		Materials:   []string{"Камера/смартфон", "Штатив", "Защита от дождя"},
		Inspiration: "Стиль киберпанк и работы Саула Лейтера",
	},
	{
		ID:          "3",
		Title:       "Скульптура из переработанных материалов",
		Description: "Создайте произведение искусства, используя только найденные и переработанные предметы",
		Category:    CategorySculpture,
		Difficulty:  models.DifficultyHard,
		Materials:   []string{"Переработанные материалы", "Клей", "Инструменты для работы с металлом"},
		Inspiration: "Работы Эль Анатсуи и движение Arte Povera",
	},
	{
		ID:          "4",
		Title:       "Минималистичный натюрморт",
		Description: "Композиция из 2-3 простых предметов с акцентом на игру света и тени",
		Category:    CategoryPainting,
		Difficulty:  models.DifficultyEasy,
		Materials:   []string{"Карандаши", "Бумага", "Простые предметы для композиции"},
		Inspiration: "Работы Джорджо Моранди",
	},
	{
		ID:          "5",
		Title:       "Цифровой коллаж воспоминаний",
		Description: "Создайте сюрреалистичный коллаж, объединяющий личные фотографии с абстрактными элементами",
		Category:    CategoryDigital,
		Difficulty:  models.DifficultyMedium,
		Materials:   []string{"Графический планшет", "Photoshop/GIMP", "Личные фотографии"},
		Inspiration: "Работы Дэвида Хокни и Ханны Хёх",
	},
	{
		ID:          "6",
		Title:       "Хайку в каллиграфии",
		Description: "Напишите короткое стихотворение в стиле хайку и оформите его художественной каллиграфией",
		Category:    CategoryCalligraphy,
		Difficulty:  models.DifficultyMedium,
		Materials:   []string{"Тушь", "Перья", "Качественная бумага"},
		Inspiration: "Традиционная японская каллиграфия",
	},
}

// Ideas returns a copy of the built-in ideas in catalog order.
func Ideas() []models.Idea {
	return models.CloneIdeas(ideas)
}

// QuickAction is a shortcut that prefills the prompt with a category label.
type QuickAction struct {
	Key         string `json:"key"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Prompt is the text placed into the input when the action is triggered.
func (q QuickAction) Prompt() string {
	return strings.ToLower(q.Title)
}

var quickActions = []QuickAction{
	{Key: "painting", Icon: "Brush", Title: CategoryPainting, Description: "Идеи для картин и рисунков"},
	{Key: "photography", Icon: "Camera", Title: CategoryPhotography, Description: "Концепции для съемки"},
	{Key: "crafts", Icon: "Scissors", Title: "Рукоделие", Description: "Поделки и hand-made"},
}

// QuickActions lists the shortcuts in display order.
func QuickActions() []QuickAction {
	return append([]QuickAction(nil), quickActions...)
}

// QuickActionByKey finds a shortcut by its key.
func QuickActionByKey(key string) (QuickAction, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, q := range quickActions {
		if q.Key == key {
			return q, true
		}
	}
	return QuickAction{}, false
}
