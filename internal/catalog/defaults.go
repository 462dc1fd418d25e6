package catalog

import "vk-compliment-bot/internal/models"

const (
	defaultNoPhotoMessage  = "Новый пост без фото, но я уверен, что там что-то потрясающее! 💫"
	defaultFallbackMessage = "Прости, слова закончились, но ты всё равно лучшая! ❤️"
	defaultCaption         = "татуировка, эскиз"
)

var defaultKeywords = map[models.Category][]string{
	models.CategoryAppointment: {
		"запис", "свободн", "окошк", "окно на", "бронь", "забронир",
		"appointment", "booking",
	},
	models.CategoryInProgress: {
		"в процессе", "процесс", "сеанс", "незаконч", "продолжение", "не закончен",
		"in progress", "work in progress", "outline", "контур",
	},
	models.CategoryTattoo: {
		"тату", "татуир", "зажив", "готовая работа", "чернил",
		"tattoo", "ink",
	},
	models.CategorySketch: {
		"эскиз", "скетч", "рисун", "набросок", "флеш", "дизайн",
		"sketch", "drawing", "design", "flash",
	},
	models.CategoryEquipment: {
		"машинк", "оборудован", "игл", "пигмент", "краск", "расходник",
		"machine", "needle", "equipment",
	},
	models.CategoryEquipmentAndStudio: {
		"студи", "рабочее место", "кабинет", "интерьер", "кушетк",
		"studio", "workspace",
	},
}

var defaultCompliments = map[models.Category][]string{
	models.CategorySketch: {
		"Этот эскиз просто огонь! У тебя невероятное чувство линии ✏️",
		"Каждый твой эскиз — маленькое произведение искусства 🎨",
		"Смотрю на эскиз и уже хочу его на себе!",
		"Какая композиция! Ты видишь форму как никто другой ✨",
		"Эскиз настолько живой, что кажется, он сейчас задвигается 😍",
		"Твоя фантазия не знает границ, это восхитительно!",
	},
	models.CategoryTattoo: {
		"Какая потрясающая работа! Клиенту очень повезло с мастером 🖤",
		"Линии идеальные, тени бархатные — ты профи!",
		"Эта татуировка будет радовать всю жизнь, и всё благодаря тебе ✨",
		"Ты превращаешь кожу в искусство, это магия 💫",
		"Невероятная работа, горжусь тобой!",
		"Смотрю и не могу налюбоваться, как же красиво 😍",
	},
	models.CategoryInProgress: {
		"Даже в процессе видно, что будет шедевр! 💪",
		"Ты так сосредоточена, это вдохновляет ✨",
		"Процесс — это тоже искусство, и ты в нём великолепна!",
		"Не терпится увидеть финальный результат 🔥",
		"Каждый сеанс у тебя как маленькое волшебство",
	},
	models.CategoryEquipment: {
		"Вот это инструменты настоящего мастера! 🛠️",
		"С таким оборудованием и твоими руками возможно всё!",
		"Всё так аккуратно и продуманно, восхищаюсь тобой",
		"Новая машинка? Теперь работы станут ещё круче! ⚡",
	},
	models.CategoryAppointment: {
		"Спешите записаться к лучшему мастеру города! 📅",
		"Твои окошки разлетаются мгновенно, и это заслуженно!",
		"Кто успеет записаться, тому очень повезёт ✨",
		"Запись к тебе — лучший подарок себе 🎁",
	},
	models.CategoryEquipmentAndStudio: {
		"В твоей студии так уютно, хочется остаться там навсегда 🏠",
		"Рабочее место мечты, всё идеально!",
		"Студия отражает твой стиль, это прекрасно ✨",
		"Такое пространство само вдохновляет на шедевры",
	},
	models.CategoryWeekly: {
		"Новая неделя — новые шедевры! Ты справишься со всем 💪",
		"Пусть эта неделя будет полна вдохновения и благодарных клиентов ✨",
		"Ты умница, и эта неделя будет твоей! ❤️",
		"Желаю лёгких сеансов и ровных линий на всю неделю 🖤",
	},
	models.CategoryClientInteractions: {
		"Клиенты обожают тебя не только за работы, но и за тепло ❤️",
		"С тобой даже самый долгий сеанс пролетает незаметно",
		"Ты умеешь успокоить и поддержать каждого, это редкий дар ✨",
		"Твои клиенты возвращаются, потому что ты лучшая!",
	},
	models.CategoryTattooIdeas: {
		"Может, пора нарисовать что-то с мотивами северного сияния? 🌌",
		"Идея: минималистичная серия с луной и звёздами ✨",
		"Как насчёт ботанической серии с полевыми цветами? 🌿",
		"Интересно было бы увидеть твой взгляд на японскую классику 🌊",
	},
}

var defaultTranslations = map[string]string{
	"tattoo":  "татуировка",
	"sketch":  "эскиз",
	"design":  "дизайн",
	"ink":     "чернила",
	"art":     "искусство",
	"drawing": "рисунок",
	"outline": "контур",
	"line":    "линия",
}
