// Package messages holds user-facing texts and LLM prompts per locale.
package messages

import "strings"

const (
	// LocaleEN is the default locale.
	LocaleEN = "en"
	// LocaleRU is the Russian locale.
	LocaleRU = "ru"
)

// Catalog is the set of texts for one locale. Fields holding %s are format strings.
type Catalog struct {
	Locale string

	Intro string
	// AnalysisQuestions takes the analysis and the clarifying questions.
	AnalysisQuestions string
	AnalysisPay       string
	UpdatedAnalysis   string
	CheckoutLink      string
	PayButton         string
	PaymentFailed     string
	AskToken          string
	Connected         string
	Cancelled         string
	NothingToCancel   string
	Help              string
	Apology           string
	RateLimited       string
	UnknownMedia      string

	HintBusiness      string
	HintClarification string
	HintPayment       string
	HintConnection    string
	HintDone          string

	CmdStart   string
	CmdPay     string
	CmdConnect string
	CmdCancel  string
	CmdHelp    string

	AnalysisPrompt    string
	QuestionsPrompt   string
	FallbackQuestions string
	FallbackSummary   string
	FallbackGoal      string
	NotSpecified      string
	LLMApology        string
}

var catalogs = map[string]Catalog{
	LocaleEN: {
		Locale: LocaleEN,
		Intro: "Hi! I'm Manoya, an AI sales manager. I analyze your business, qualify leads, run sales and keep your CRM up to date. " +
			"I work 24/7 and learn from your data, all for $10/month. " +
			"Tell me about your business: products, audience, prices and goals.",
		AnalysisQuestions: "Here is my analysis:\n%s\n\nPlease clarify:\n%s",
		AnalysisPay:       "Analysis:\n%s\n\nSend /pay to subscribe for $10/month.",
		UpdatedAnalysis:   "Updated analysis:\n%s\n\nSend /pay to subscribe.",
		CheckoutLink:      "Pay here: %s\nWhen you're done, send me your bot token (from @BotFather) to connect.",
		PayButton:         "Pay $10",
		PaymentFailed:     "Payment error: %s. You can try /pay again.",
		AskToken:          "Send me your bot token (from @BotFather) to connect.",
		Connected:         "Connected! I'm now managing your bot (token %s). Try a client request.",
		Cancelled:         "Conversation finished. Send /start to begin again.",
		NothingToCancel:   "There is nothing to cancel. Send /start to begin.",
		Help: "Commands:\n/start - start over\n/pay - get the payment link\n" +
			"/connect - connect your bot\n/cancel - end the conversation\n/help - this message",
		Apology:      "Something went wrong on my side. Please try again in a moment.",
		RateLimited:  "You're sending messages too fast. Please wait a moment.",
		UnknownMedia: "I can only read text messages.",

		HintBusiness:      "Please describe your business in a text message.",
		HintClarification: "Please answer the questions above in a text message.",
		HintPayment:       "Send /pay to get the payment link.",
		HintConnection:    "Send your bot token as a text message.",
		HintDone:          "Send /start to begin.",

		CmdStart:   "Start over",
		CmdPay:     "Get the payment link",
		CmdConnect: "Connect your bot",
		CmdCancel:  "End the conversation",
		CmdHelp:    "Show available commands",

		AnalysisPrompt: "Analyze this business: '%s'. Cover products, audience, pricing, goals, " +
			"sales strategy and risks.",
		QuestionsPrompt: "Based on '%s', ask 1-3 clarifying questions about products, prices and audience. " +
			"Reply with an empty message if nothing needs clarifying.",
		FallbackQuestions: "1. What products do you sell? 2. Who is your audience? 3. What are your prices?",
		FallbackSummary:   "Products: %s | Audience: %s | Prices: %s | Goal: %s",
		FallbackGoal:      "sales growth",
		NotSpecified:      "not specified",
		LLMApology:        "The analysis service is unavailable right now. Please try again later.",
	},
	LocaleRU: {
		Locale: LocaleRU,
		Intro: "Привет! Я Manoya, AI-менеджер по продажам. Анализирую бизнес, квалифицирую лиды, веду продажи и фиксирую сделки в CRM. " +
			"Работаю 24/7 и обучаюсь на твоих данных, всего за $10/мес. " +
			"Расскажи о бизнесе: продукты, аудитория, цены, цели.",
		AnalysisQuestions: "Я проанализировал:\n%s\n\nУточни:\n%s",
		AnalysisPay:       "Анализ:\n%s\n\nНапиши /pay для подписки $10/мес.",
		UpdatedAnalysis:   "Обновлённый анализ:\n%s\n\nНапиши /pay для подписки.",
		CheckoutLink:      "Оплати здесь: %s\nПосле оплаты пришли токен бота (от @BotFather) для подключения.",
		PayButton:         "Оплатить $10",
		PaymentFailed:     "Ошибка оплаты: %s. Можно повторить /pay.",
		AskToken:          "Скинь токен бота (от @BotFather) для подключения.",
		Connected:         "Подключено! Управляю ботом (токен %s). Тестируй запрос клиента.",
		Cancelled:         "Диалог завершён. /start для начала.",
		NothingToCancel:   "Отменять нечего. /start для начала.",
		Help: "Команды:\n/start - начать заново\n/pay - ссылка на оплату\n" +
			"/connect - подключить бота\n/cancel - завершить диалог\n/help - эта справка",
		Apology:      "Что-то пошло не так. Попробуй ещё раз чуть позже.",
		RateLimited:  "Слишком много сообщений. Подожди немного.",
		UnknownMedia: "Я понимаю только текстовые сообщения.",

		HintBusiness:      "Опиши бизнес текстовым сообщением.",
		HintClarification: "Ответь на вопросы выше текстовым сообщением.",
		HintPayment:       "Напиши /pay, чтобы получить ссылку на оплату.",
		HintConnection:    "Пришли токен бота текстовым сообщением.",
		HintDone:          "Напиши /start для начала.",

		CmdStart:   "Начать заново",
		CmdPay:     "Ссылка на оплату",
		CmdConnect: "Подключить бота",
		CmdCancel:  "Завершить диалог",
		CmdHelp:    "Список команд",

		AnalysisPrompt:    "Анализируй: '%s'. Детали: продукты, аудитория, цены, цели, стратегии, риски.",
		QuestionsPrompt:   "На основе '%s', задай 1-3 вопроса (продукты, цены, аудитория). Если уточнять нечего, ответь пустым сообщением.",
		FallbackQuestions: "1. Какие продукты? 2. Кто аудитория? 3. Какие цены?",
		FallbackSummary:   "Продукты: %s | Аудитория: %s | Цены: %s | Цели: %s",
		FallbackGoal:      "рост продаж",
		NotSpecified:      "не указано",
		LLMApology:        "Ошибка API. Попробуй позже.",
	},
}

// For returns the catalog for locale, defaulting to English.
func For(locale string) Catalog {
	if c, ok := catalogs[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return c
	}
	return catalogs[LocaleEN]
}

// Supported reports whether a catalog exists for locale.
func Supported(locale string) bool {
	_, ok := catalogs[locale]
	return ok
}
