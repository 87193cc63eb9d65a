package ruleset

// Default returns the built-in ruleset for Irkutsk-region tourism
// monitoring. Entries are lower-case stems; matching is substring-based, so
// a stem covers its inflected forms.
func Default() *Ruleset {
	return &Ruleset{
		HighImpact: []string{
			"экскурси",
			"гид",
			"маршрут",
			"турбаза",
			"турист",
			"туризм",
			"туроператор",
			"путевк",
			"достопримечательност",
			"гостиниц",
			"хостел",
			"глэмпинг",
			"кемпинг",
			"сплав",
			"тропа",
			"смотровая площадка",
			"экскурсовод",
		},
		LowImpact: []string{
			"отдых",
			"природ",
			"путешестви",
			"поход",
			"пляж",
			"пейзаж",
			"закат",
			"палатк",
			"рыбалк",
			"сувенир",
			"фотограф",
		},
		Geo: []string{
			"байкал",
			"иркутск",
			"ольхон",
			"листвянк",
			"аршан",
			"слюдянк",
			"кбжд",
			"хужир",
			"тальц",
			"большое голоустное",
			"малое море",
			"бурят",
		},
		Negative: []string{
			"дтп",
			"авари",
			"пожар",
			"убийств",
			"ограбл",
			"задержан",
			"уголовн",
			"мошенн",
			"вакансия",
			"продам",
			"распродаж",
			"курс валют",
			"коммуналь",
		},
		Ban: []string{
			"казино",
			"букмекер",
			"ставки на спорт",
			"наркот",
			"закладк",
			"эскорт",
			"интим",
			"кредит без",
		},
		Political: []string{
			"путин",
			"кремл",
			"госдум",
			"депутат",
			"выборы",
			"голосован",
			"митинг",
			"санкци",
			"мобилизац",
			"оппозиц",
			"законопроект",
			"министерств",
		},
		Whitelist: []string{
			"министерство туризма",
			"агентство по туризму",
			"заповедник",
			"нацпарк",
			"национальный парк",
			"экотроп",
			"визит-центр",
		},
		Profanity: []string{
			"хуй",
			"хуе",
			"хуя",
			"пизд",
			"ебан",
			"ебат",
			"ёбан",
			"блять",
			"бляд",
			"мудак",
			"мраз",
			"долбо",
			"сволоч",
		},
		UsefulCues: []string{
			"советую",
			"рекоменду",
			"стоит посетить",
			"как добраться",
			"расписание",
			"цена",
			"стоимост",
			"брониров",
			"адрес",
			"телефон",
			"режим работы",
			"сколько стоит",
		},
		UselessCues: []string{
			"подпишись",
			"подписывайтесь",
			"переходи по ссылке",
			"заработок",
			"без вложений",
			"пиши в лс",
			"розыгрыш",
			"выиграй",
			"реклама",
			"спам",
		},
		Thresholds: Thresholds{
			Relevance:        0.3,
			Backend:          0.5,
			BackendOverride:  0.7,
			MinCommentLength: 20,
		},
	}
}
