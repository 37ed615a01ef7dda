package campaign

// Template is a ready-made campaign the composer can start from.
type Template struct {
	ID      string
	Name    string
	Title   string
	Message string
}

var Templates = []Template{
	{
		ID:      "whitening",
		Name:    "عرض تبييض الأسنان",
		Title:   "عرض خاص - تبييض الأسنان ✨",
		Message: "🎉 عرض محدود!\n\nتبييض الأسنان بالليزر الآن بخصم 30%\n\nالسعر: 700 ريال بدلاً من 1000 ريال\n\n⏰ العرض ساري حتى نهاية الشهر\n\n📱 احجز الآن عبر التطبيق",
	},
	{
		ID:      "cleaning",
		Name:    "عرض التنظيف",
		Title:   "موسم التنظيف - خصم خاص 🦷",
		Message: "✨ نظف أسنانك الآن!\n\nتنظيف شامل + فحص مجاني\n\nالسعر: 150 ريال فقط\n\n✅ إزالة الجير\n✅ تلميع الأسنان\n✅ فحص شامل مجاني\n\n📅 احجز موعدك الآن",
	},
	{
		ID:      "first_visit",
		Name:    "عرض الزيارة الأولى",
		Title:   "مرحباً بك في عيادات الغصاب 🎁",
		Message: "🌟 عرض الزيارة الأولى!\n\nخصم 50% على الكشف والاستشارة\n\nالسعر: 50 ريال فقط\n\n✅ كشف شامل\n✅ استشارة مجانية\n✅ خطة علاج مفصلة\n\nنتطلع لخدمتك! 💙",
	},
	{
		ID:      "reminder",
		Name:    "تذكير بالزيارة",
		Title:   "حان وقت فحصك الدوري 📅",
		Message: "👋 نتمنى أن تكون بخير!\n\nلاحظنا أنك لم تزرنا منذ فترة\n\n🦷 ننصح بالفحص الدوري كل 6 أشهر\n\n💙 نقدم لك خصم 20% على زيارتك القادمة\n\n📱 احجز الآن بسهولة",
	},
	{
		ID:      "loyalty",
		Name:    "عرض الولاء",
		Title:   "شكراً لولائك 🌟",
		Message: "💙 عميلنا المميز!\n\nشكراً لثقتك بنا\n\n🎁 نقدم لك:\n• خصم 25% على أي خدمة\n• استشارة مجانية\n• أولوية في المواعيد\n\n✨ عرض حصري للعملاء المميزين",
	},
}

// TemplateByID returns the built-in template with the given ID.
func TemplateByID(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
