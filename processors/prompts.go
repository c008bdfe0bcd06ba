package processors

import (
	"fmt"

	"videoExplain/core"
)

// ComposePrompt builds the instruction text for one segment. Templates are
// fixed per (mode, lang); the optional user hint fills a reference slot and
// a non-empty bridge summary is prepended as a previous-segment block in
// the target language. Identical inputs produce byte-identical output.
func ComposePrompt(mode core.Mode, lang core.Lang, hint, bridgeSummary string) string {
	var prefix string
	if bridgeSummary != "" {
		if lang == core.LangJA {
			prefix = fmt.Sprintf("前セグメントの要約:\n%s\n\n", bridgeSummary)
		} else {
			prefix = fmt.Sprintf("Previous segment summary:\n%s\n\n", bridgeSummary)
		}
	}
	return prefix + baseTemplate(mode, lang, hint)
}

func baseTemplate(mode core.Mode, lang core.Lang, hint string) string {
	switch mode {
	case core.ModeSummary:
		if lang == core.LangJA {
			return fmt.Sprintf(promptSummaryJA, hintOrNoneJA(hint))
		}
		return fmt.Sprintf(promptSummaryEN, hintOrNoneEN(hint))
	default:
		if lang == core.LangJA {
			return fmt.Sprintf(promptDetailJA, hintOrNoneJA(hint))
		}
		return fmt.Sprintf(promptDetailEN, hintOrNoneEN(hint))
	}
}

func hintOrNoneEN(hint string) string {
	if hint == "" {
		return "(none)"
	}
	return hint
}

func hintOrNoneJA(hint string) string {
	if hint == "" {
		return "(特になし)"
	}
	return hint
}

const promptDetailJA = `あなたは動画解析の専門家です。以下の構造で出力してください：

参考情報（任意）: %s

## 概要
[ファイル名と動画全体の内容を2-3行で要約]

## 所要時間
[動画の長さ]

## 解説
[作業者が画面のどの部分を見ているか、何を確認しようとしているかを推察して記述]

## 業務詳細
[他の人が同じ作業を再現できるよう、以下の形式で詳細に記述]

### ステップ1: [ステップ名] 【所要時間xx分】
**タイムスタンプ:** [動画上の該当箇所（例: 00:45 または 00:45–01:20）]
**使用ツール:** [動画の内容から推察した具体的なツール名。例: Google Chrome / Excel / VS Code / Slack / Jira / GitHub / Terminal / Finder / Figma など製品名やSaaS名]
- 具体的な操作1
- 具体的な操作2
- 具体的な操作3

**解説:** [このステップで作業者が何を確認・検証しようとしているかを推察]

### ステップ2: [ステップ名] 【所要時間xx分】
**タイムスタンプ:** [動画上の該当箇所（例: 02:10 または 01:20–02:00）]
**使用ツール:** [動画の内容から推察した具体的なツール名]
- 具体的な操作1
- 具体的な操作2

**解説:** [このステップで作業者が何を確認・検証しようとしているかを推察]

[必要に応じてステップを追加]

業務詳細では、各ステップの所要時間を【所要時間xx分】の形式で記載し、各ステップで**タイムスタンプ**（単一時刻または開始–終了の範囲）と**使用ツール**を明記し、各ステップの後に**解説:**として作業者の意図を推察してください。操作詳細では、ボタン名、メニュー名、入力値、クリック位置、キーボード操作、画面遷移など、第三者が同じ作業を完全に再現できる粒度で記述してください。`

const promptDetailEN = `You are an expert at analyzing screen recordings. Output in the following structure.

LANGUAGE POLICY: Output only in English. If any on-screen text, UI labels, or speech are in Japanese or any non-English language, translate all content into natural English. Do not include non-English text unless essential for clarity.

Reference (optional): %s

## Overview
[Summarize the file name and the whole video in 2–3 lines]

## Duration
[Length of the video]

## Business Inference
[Infer what the operator is looking at and trying to verify]

## Business Details
[Describe so that others can reproduce the same work exactly]

### Step 1: [Step name] [Duration xx min]
**Timestamp:** [Relevant time in the video (e.g., 00:45 or 00:45–01:20)]
**Used Tool:** [Specific tool name inferred from the video, e.g., Google Chrome / Excel / VS Code / Slack / Jira / GitHub / Terminal / Finder / Figma]
- Concrete operation 1
- Concrete operation 2
- Concrete operation 3

**Business Inference:** [What the operator intends to check/verify in this step]

### Step 2: [Step name] [Duration xx min]
**Timestamp:** [Relevant time in the video (e.g., 02:10 or 01:20–02:00)]
**Used Tool:** [Specific tool name]
- Concrete operation 1
- Concrete operation 2

**Business Inference:** [What the operator intends in this step]

[Add more steps as needed]

In Business Details, write each step's duration as [Duration xx min], always include a **Timestamp** (single time or start–end range) and **Used Tool** (use specific product names when possible), and add **Business Inference:** after each step. For operations, include button/menu names, input values, click targets, keyboard actions, screen transitions, etc., at a granularity that allows exact reproduction.`

const promptSummaryJA = `あなたは動画解析の専門家です。以下の構造で簡潔に出力してください（全体で500〜800字程度）：

参考情報（任意）: %s

## 概要
[ファイル名と動画全体の内容を1-2行で要約]

## 重要ポイント
- [最重要の操作・確認 3-6個の箇条書き]

## 所要時間
[動画の長さ]

## 次のアクション
- [視聴後に取るべきアクション 2-3個]

## 業務詳細（簡略）
[主要なステップを2〜4つ、各ステップは以下の形式で簡潔に記述。各ステップの見出しに【所要時間xx分】を含めてください]

### ステップ1: [ステップ名] 【所要時間xx分】
**使用ツール:** [動画の内容から推察した具体的なツール名]
- 代表的な操作1（簡潔）
- 代表的な操作2（簡潔）

**解説:** [このステップの目的・意図を1行で]

### ステップ2: [ステップ名] 【所要時間xx分】
**使用ツール:** [動画の内容から推察した具体的なツール名]
- 代表的な操作1（簡潔）
- 代表的な操作2（簡潔）

**解説:** [このステップの目的・意図を1行で]

[必要に応じてステップを追加（最大4つまで）]
`

const promptSummaryEN = `You are an expert at analyzing screen recordings. Output concisely in the structure below (about 500–800 chars total).

LANGUAGE POLICY: Output only in English. If any on-screen text, UI labels, or speech are in Japanese or any non-English language, translate all content into natural English. Do not include non-English text unless essential for clarity.

Reference (optional): %s

## Overview
[Summarize the file name and the whole video in 1–2 lines]

## Key Points
- [3–6 bullet points of the most important operations/checks]

## Duration
[Length of the video]

## Next Actions
- [2–3 actions to take after watching]

## Business Details (Brief)
[List 2–4 main steps, each as below. Include [Duration xx min] in each step heading.]

### Step 1: [Step name] [Duration xx min]
**Used Tool:** [Specific tool name inferred from the video]
- Representative operation 1 (concise)
- Representative operation 2 (concise)

**Business Inference:** [One-line purpose/intention of the step]

### Step 2: [Step name] [Duration xx min]
**Used Tool:** [Specific tool name]
- Representative operation 1 (concise)
- Representative operation 2 (concise)

**Business Inference:** [One-line purpose/intention]

[Add more steps if needed (max 4)]
`
